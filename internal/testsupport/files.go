package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteImage creates a fake image file with the given contents under dir,
// creating intermediate directories as needed, and returns its path.
func WriteImage(t testing.TB, dir, name string, contents []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ImageBatch creates one fake file per name in a fresh temp directory and
// returns the paths in the given order.
func ImageBatch(t testing.TB, names ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, WriteImage(t, dir, name, []byte("image data: "+name)))
	}
	return paths
}
