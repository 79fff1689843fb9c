package classify

import (
	"errors"
	"testing"

	"darkroom/internal/api"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Classification
	}{
		{"shoot/IMG_0001.dng", RAW},
		{"shoot/IMG_0002.CR2", RAW},
		{"shoot/IMG_0003.cr3", RAW},
		{"shoot/IMG_0004.NEF", RAW},
		{"shoot/IMG_0005.arw", RAW},
		{"a.jpg", Standard},
		{"b.JPEG", Standard},
		{"notes.txt", Unsupported},
		{"archive.zip", Unsupported},
		{"noextension", Unsupported},
		{"", Unsupported},
	}
	for _, tc := range cases {
		if got := Classify(tc.path); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestClassifyIsPure(t *testing.T) {
	for _, path := range []string{"x.dng", "x.jpg", "x.bin"} {
		first := Classify(path)
		for i := 0; i < 3; i++ {
			if got := Classify(path); got != first {
				t.Fatalf("Classify(%q) changed between calls: %v then %v", path, first, got)
			}
		}
	}
}

func TestValidateBatchEmptyInput(t *testing.T) {
	err := ValidateBatch(nil, api.Profile{ImageType: api.ImageTypeRAW}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Partition != "empty batch" {
		t.Fatalf("unexpected partition: %q", verr.Partition)
	}
	if !errors.Is(err, api.ErrValidation) {
		t.Fatal("expected error to match api.ErrValidation")
	}
}

func TestValidateBatchListsEveryMismatch(t *testing.T) {
	paths := []string{"a.cr2", "b.jpg", "c.dng", "d.jpeg"}
	err := ValidateBatch(paths, api.Profile{ImageType: api.ImageTypeRAW}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Partition != "mismatched type" {
		t.Fatalf("unexpected partition: %q", verr.Partition)
	}
	if len(verr.Paths) != 2 {
		t.Fatalf("expected 2 offending paths, got %v", verr.Paths)
	}
	if verr.Paths[0] != "b.jpg" || verr.Paths[1] != "d.jpeg" {
		t.Fatalf("unexpected offending paths: %v", verr.Paths)
	}
}

func TestValidateBatchListsEveryUnsupported(t *testing.T) {
	paths := []string{"a.cr2", "readme.md", "b.dng", "scan.pdf"}
	err := ValidateBatch(paths, api.Profile{ImageType: api.ImageTypeRAW}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Partition != "unsupported" {
		t.Fatalf("unexpected partition: %q", verr.Partition)
	}
	if len(verr.Paths) != 2 {
		t.Fatalf("expected 2 offending paths, got %v", verr.Paths)
	}
}

func TestValidateBatchAllUnsupported(t *testing.T) {
	paths := []string{"readme.md", "scan.pdf"}
	err := ValidateBatch(paths, api.Profile{ImageType: api.ImageTypeRAW}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Partition != "no supported files" {
		t.Fatalf("unexpected partition: %q", verr.Partition)
	}
	if len(verr.Paths) != 2 {
		t.Fatalf("expected both paths listed, got %v", verr.Paths)
	}
}

func TestValidateBatchMixedPartitionsListEveryOffender(t *testing.T) {
	// Mixed wrong-type plus unsupported files label the type mismatch as the
	// actionable failure, but the error still lists offenders from both
	// partitions.
	paths := []string{"a.dng", "b.jpg", "scan.pdf"}
	err := ValidateBatch(paths, api.Profile{ImageType: api.ImageTypeRAW}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Partition != "mismatched type" {
		t.Fatalf("unexpected partition: %q", verr.Partition)
	}
	if len(verr.Paths) != 2 {
		t.Fatalf("expected all 2 offenders listed, got %v", verr.Paths)
	}
	if verr.Paths[0] != "b.jpg" || verr.Paths[1] != "scan.pdf" {
		t.Fatalf("unexpected offending paths: %v", verr.Paths)
	}
	if len(verr.Mismatched) != 1 || verr.Mismatched[0] != "b.jpg" {
		t.Fatalf("unexpected mismatched partition: %v", verr.Mismatched)
	}
	if len(verr.Unsupported) != 1 || verr.Unsupported[0] != "scan.pdf" {
		t.Fatalf("unexpected unsupported partition: %v", verr.Unsupported)
	}
}

func TestValidateBatchSuccess(t *testing.T) {
	paths := []string{"a.dng", "b.cr2"}
	if err := ValidateBatch(paths, api.Profile{ImageType: api.ImageTypeRAW}, nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	jpgs := []string{"a.jpg", "b.jpeg"}
	if err := ValidateBatch(jpgs, api.Profile{ImageType: api.ImageTypeJPG}, nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
