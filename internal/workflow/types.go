package workflow

import (
	"fmt"

	"darkroom/internal/api"
	"darkroom/internal/download"
	"darkroom/internal/upload"
)

// Phase names one step of the workflow for error tagging.
type Phase string

const (
	PhaseProfiles Phase = "profiles"
	PhaseCreate   Phase = "create project"
	PhaseValidate Phase = "validate"
	PhaseUpload   Phase = "upload"
	PhaseEdit     Phase = "start edit"
	PhasePoll     Phase = "poll"
	PhaseLinks    Phase = "download links"
	PhaseDownload Phase = "download"
	PhaseExport   Phase = "export"
)

// PhaseError tags a failure with the workflow phase it occurred in. The
// wrapped error keeps its sentinel classification.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Request describes one quick-edit workflow run.
type Request struct {
	// ProjectName is optional; empty requests an auto-generated name.
	// A duplicate name is a hard failure and is not retried.
	ProjectName string
	// ProfileKey selects the editing profile; it must exist remotely.
	ProfileKey int
	// Paths is the ordered local batch to upload.
	Paths []string
	// PhotographyType optionally hints the shoot genre.
	PhotographyType api.PhotographyType
	// EditOptions toggles individual tools; nil leaves service defaults.
	EditOptions *api.EditOptions
	// Download controls whether results (and exports) are written locally.
	Download bool
	// DownloadDir overrides the configured output directory when set.
	DownloadDir string
	// Export additionally requests delivery-format export after editing.
	Export bool

	// UploadProgress and DownloadProgress receive per-file completion events.
	// Both are invoked from worker goroutines and must be safe for
	// concurrent use.
	UploadProgress   upload.ProgressFunc
	DownloadProgress download.ProgressFunc
}

// Result aggregates one workflow run's outcome. Assembled once and returned
// to the caller; never mutated afterwards.
type Result struct {
	ProjectUUID     string
	UploadSummary   upload.Summary
	DownloadLinks   []string
	ExportLinks     []string
	DownloadedFiles []string
	ExportedFiles   []string
}
