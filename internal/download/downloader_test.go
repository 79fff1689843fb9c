package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"darkroom/internal/api"
)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func testRetry(attempts int) api.RetryPolicy {
	return api.RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Sleep: noSleep}
}

func TestDownloadWritesFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "contents of %s", filepath.Base(r.URL.Path))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "out")
	links := []string{
		server.URL + "/edited/img_0001.jpg",
		server.URL + "/edited/img_0002.jpg",
	}
	downloader := New(server.Client(), 2, testRetry(1), nil)
	paths, err := downloader.Download(context.Background(), links, dir, nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}
	for i, p := range paths {
		want := filepath.Join(dir, fmt.Sprintf("img_%04d.jpg", i+1))
		if p != want {
			t.Fatalf("path %d = %q, want %q", i, p, want)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if len(data) == 0 {
			t.Fatalf("file %s empty", p)
		}
	}
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	var mu sync.Mutex
	failures := map[string]int{"/flaky.jpg": 2} // fail twice, then succeed
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		remaining := failures[r.URL.Path]
		if remaining > 0 {
			failures[r.URL.Path]--
		}
		mu.Unlock()
		if remaining > 0 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	dir := t.TempDir()
	links := []string{
		server.URL + "/steady-1.jpg",
		server.URL + "/flaky.jpg",
		server.URL + "/steady-2.jpg",
	}
	downloader := New(server.Client(), 3, testRetry(3), nil)
	paths, err := downloader.Download(context.Background(), links, dir, nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected all 3 files including the retried one, got %v", paths)
	}
}

func TestDownloadAllFailedIsHardError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	downloader := New(server.Client(), 2, testRetry(2), nil)
	links := []string{server.URL + "/a.jpg", server.URL + "/b.jpg"}
	_, err := downloader.Download(context.Background(), links, t.TempDir(), nil)
	if !errors.Is(err, ErrAllDownloadsFailed) {
		t.Fatalf("expected ErrAllDownloadsFailed, got %v", err)
	}
}

func TestDownloadPartialFailureReturnsSuccesses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.jpg" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	dir := t.TempDir()
	links := []string{server.URL + "/good.jpg", server.URL + "/broken.jpg"}
	downloader := New(server.Client(), 2, testRetry(2), nil)
	paths, err := downloader.Download(context.Background(), links, dir, nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "good.jpg" {
		t.Fatalf("expected only good.jpg, got %v", paths)
	}
}

func TestDownloadCreatesOutputDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	downloader := New(server.Client(), 1, testRetry(1), nil)
	if _, err := downloader.Download(context.Background(), []string{server.URL + "/a.jpg"}, dir, nil); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("output directory not created: %v", err)
	}
}

func TestDownloadCollisionOverwrites(t *testing.T) {
	var mu sync.Mutex
	serial := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		serial++
		mu.Unlock()
		fmt.Fprintf(w, "body-%d", serial)
	}))
	defer server.Close()

	dir := t.TempDir()
	// Same filename in both links; one file must remain and contain one of
	// the two bodies.
	links := []string{
		server.URL + "/batch1/dup.jpg",
		server.URL + "/batch2/dup.jpg",
	}
	downloader := New(server.Client(), 1, testRetry(1), nil)
	paths, err := downloader.Download(context.Background(), links, dir, nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected both links reported, got %v", paths)
	}
	if paths[0] != paths[1] {
		t.Fatalf("expected colliding links to share a path, got %v", paths)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single file after collision, got %d", len(entries))
	}
}

func TestDownloadProgressFiresOncePerLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	links := []string{server.URL + "/a.jpg", server.URL + "/b.jpg", server.URL + "/c.jpg"}
	var counts []int
	downloader := New(server.Client(), 2, testRetry(1), nil)
	_, err := downloader.Download(context.Background(), links, t.TempDir(), func(completed, total int, message string) {
		counts = append(counts, completed)
	})
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if len(counts) != len(links) {
		t.Fatalf("progress fired %d times, want %d", len(counts), len(links))
	}
	for i, c := range counts {
		if c != i+1 {
			t.Fatalf("completion counts out of order: %v", counts)
		}
	}
}

func TestDownloadEmptyLinksNoop(t *testing.T) {
	downloader := New(nil, 1, testRetry(1), nil)
	paths, err := downloader.Download(context.Background(), nil, filepath.Join(t.TempDir(), "never"), nil)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}
