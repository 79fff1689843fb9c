package classify

import (
	"path/filepath"
	"strings"

	"darkroom/internal/api"
)

// Classification is the file-type category derived from a path's extension.
type Classification int

const (
	// Unsupported marks extensions outside both known sets.
	Unsupported Classification = iota
	// RAW marks camera raw formats.
	RAW
	// Standard marks common compressed image formats.
	Standard
)

func (c Classification) String() string {
	switch c {
	case RAW:
		return "RAW"
	case Standard:
		return "STANDARD"
	default:
		return "UNSUPPORTED"
	}
}

// The two extension sets are disjoint; membership is decided on the
// lowercased suffix so classification is a pure function of the path.
var rawExtensions = map[string]struct{}{
	".dng": {}, ".cr2": {}, ".cr3": {}, ".crw": {},
	".nef": {}, ".nrw": {},
	".arw": {}, ".srf": {}, ".sr2": {},
	".orf": {}, ".raf": {}, ".rw2": {},
	".pef": {}, ".srw": {}, ".erf": {}, ".mrw": {},
	".mos": {}, ".x3f": {}, ".3fr": {}, ".fff": {},
	".iiq": {}, ".rwl": {},
}

var standardExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {},
}

// Classify maps a file path onto its category by case-insensitive extension
// lookup. It never touches the filesystem.
func Classify(path string) Classification {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := rawExtensions[ext]; ok {
		return RAW
	}
	if _, ok := standardExtensions[ext]; ok {
		return Standard
	}
	return Unsupported
}

// Matches reports whether the classification satisfies a profile image type.
func (c Classification) Matches(imageType api.ImageType) bool {
	switch imageType {
	case api.ImageTypeRAW:
		return c == RAW
	case api.ImageTypeJPG:
		return c == Standard
	default:
		return false
	}
}
