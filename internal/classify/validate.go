package classify

import (
	"fmt"
	"log/slog"
	"strings"

	"darkroom/internal/api"
	"darkroom/internal/logging"
)

// ValidationError reports every path in a batch that conflicts with the
// target profile, so callers can correct the whole batch in one pass.
type ValidationError struct {
	// Partition names the dominant violated category: "mismatched type",
	// "unsupported", "no supported files", or "empty batch".
	Partition string
	// ProfileImageType is the type the profile accepts.
	ProfileImageType api.ImageType
	// Paths lists every offending file in input order, across both
	// partitions, not just the first.
	Paths []string
	// Mismatched and Unsupported split Paths by failure category.
	Mismatched  []string
	Unsupported []string
}

func (e *ValidationError) Error() string {
	if len(e.Paths) == 0 {
		return fmt.Sprintf("batch validation: %s", e.Partition)
	}
	return fmt.Sprintf("batch validation: %s for %s profile: %s",
		e.Partition, e.ProfileImageType, strings.Join(e.Paths, ", "))
}

// Unwrap tags the failure as a validation error; it is never retried.
func (e *ValidationError) Unwrap() error { return api.ErrValidation }

// ValidateBatch checks an ordered batch of paths against the profile's
// declared image type. A mismatched or unsupported file anywhere in the batch
// fails the whole batch; an empty batch is a failure rather than a vacuous
// success because downstream phases require at least one file.
func ValidateBatch(paths []string, profile api.Profile, logger *slog.Logger) error {
	log := logging.NewComponentLogger(logger, "validator")

	if len(paths) == 0 {
		return &ValidationError{Partition: "empty batch", ProfileImageType: profile.ImageType}
	}

	var mismatched, unsupported, offenders []string
	matching := 0
	for _, path := range paths {
		c := Classify(path)
		switch {
		case c == Unsupported:
			unsupported = append(unsupported, path)
			offenders = append(offenders, path)
		case c.Matches(profile.ImageType):
			matching++
		default:
			mismatched = append(mismatched, path)
			offenders = append(offenders, path)
		}
	}

	// A batch that is entirely unsupported gets its own error; a type
	// mismatch message would point users at the wrong fix.
	if len(mismatched) == 0 && len(unsupported) == len(paths) {
		return &ValidationError{
			Partition:        "no supported files",
			ProfileImageType: profile.ImageType,
			Paths:            offenders,
			Unsupported:      unsupported,
		}
	}
	if len(offenders) > 0 {
		// The partition label names the more actionable failure, but the
		// path list always carries every offender from both categories.
		partition := "mismatched type"
		if len(mismatched) == 0 {
			partition = "unsupported"
		}
		return &ValidationError{
			Partition:        partition,
			ProfileImageType: profile.ImageType,
			Paths:            offenders,
			Mismatched:       mismatched,
			Unsupported:      unsupported,
		}
	}

	log.Debug("batch validated", "files", matching, "image_type", string(profile.ImageType))
	return nil
}
