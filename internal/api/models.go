package api

import (
	"fmt"
	"strings"
)

// ImageType identifies the file-type category a profile accepts.
type ImageType string

const (
	ImageTypeRAW ImageType = "RAW"
	ImageTypeJPG ImageType = "JPG"
)

// Profile describes a remotely-trained editing style. Profiles are read-only
// snapshots fetched from the service and never mutated locally.
type Profile struct {
	Key       int       `json:"profile_key"`
	Name      string    `json:"profile_name"`
	Type      string    `json:"profile_type"`
	ImageType ImageType `json:"image_type"`
}

// Project is a server-side grouping of one uploaded batch, its editing job,
// and its output artifacts. Immutable once created; identified by UUID for
// the remainder of the workflow.
type Project struct {
	UUID string `json:"project_uuid"`
	Name string `json:"project_name,omitempty"`
}

// Status enumerates the job states reported by the service.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusUploading  Status = "UPLOADING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusExporting  Status = "EXPORTING"
	StatusExported   Status = "EXPORTED"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExported:
		return true
	default:
		return false
	}
}

// StatusDetails is the latest observed snapshot of a job's state. Progress
// is a percentage from 0 to 100 when the service reports one.
type StatusDetails struct {
	Status   Status   `json:"status"`
	Progress *float64 `json:"progress,omitempty"`
	Details  string   `json:"details,omitempty"`
}

// PhotographyType hints the service at the shoot genre for an edit job.
type PhotographyType string

const (
	PhotographyNoType          PhotographyType = "NO_TYPE"
	PhotographyOther           PhotographyType = "OTHER"
	PhotographyBoudoir         PhotographyType = "BOUDOIR"
	PhotographyEvents          PhotographyType = "EVENTS"
	PhotographyFamilyNewborn   PhotographyType = "FAMILY_NEWBORN"
	PhotographyLandscapeNature PhotographyType = "LANDSCAPE_NATURE"
	PhotographyPortraits       PhotographyType = "PORTRAITS"
	PhotographySports          PhotographyType = "SPORTS"
	PhotographyWedding         PhotographyType = "WEDDING"
)

// ParsePhotographyType maps a user-supplied label (any case, hyphens or
// underscores) onto a known photography type.
func ParsePhotographyType(value string) (PhotographyType, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), "-", "_"))
	switch PhotographyType(normalized) {
	case PhotographyNoType, PhotographyOther, PhotographyBoudoir, PhotographyEvents,
		PhotographyFamilyNewborn, PhotographyLandscapeNature, PhotographyPortraits,
		PhotographySports, PhotographyWedding:
		return PhotographyType(normalized), nil
	}
	return "", fmt.Errorf("unknown photography type %q", value)
}

// EditOptions carries the per-job editing toggles. Every field defaults to
// unset, which leaves the service default in effect; unset fields are omitted
// from the request body rather than being sent as false.
type EditOptions struct {
	Crop                     *bool  `json:"crop,omitempty"`
	Straighten               *bool  `json:"straighten,omitempty"`
	HDRMerge                 *bool  `json:"hdr_merge,omitempty"`
	PortraitCrop             *bool  `json:"portrait_crop,omitempty"`
	SmoothSkin               *bool  `json:"smooth_skin,omitempty"`
	SubjectMask              *bool  `json:"subject_mask,omitempty"`
	HeadshotCrop             *bool  `json:"headshot_crop,omitempty"`
	PerspectiveCorrection    *bool  `json:"perspective_correction,omitempty"`
	SkyReplacement           *bool  `json:"sky_replacement,omitempty"`
	SkyReplacementTemplateID *int   `json:"sky_replacement_template_id,omitempty"`
	WindowPull               *bool  `json:"window_pull,omitempty"`
	CropAspectRatio          string `json:"crop_aspect_ratio,omitempty"`
}

// Validate enforces the service's mutual-exclusivity rules: at most one crop
// mode and at most one straightening method per job.
func (o *EditOptions) Validate() error {
	if o == nil {
		return nil
	}
	crops := 0
	for _, flag := range []*bool{o.Crop, o.PortraitCrop, o.HeadshotCrop} {
		if flag != nil && *flag {
			crops++
		}
	}
	if crops > 1 {
		return fmt.Errorf("%w: edit options: only one of crop, portrait_crop, headshot_crop may be enabled", ErrValidation)
	}
	if o.Straighten != nil && *o.Straighten && o.PerspectiveCorrection != nil && *o.PerspectiveCorrection {
		return fmt.Errorf("%w: edit options: straighten and perspective_correction are mutually exclusive", ErrValidation)
	}
	return nil
}

// Bool returns a pointer suitable for EditOptions fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer suitable for EditOptions fields.
func Int(v int) *int { return &v }

// DownloadLink pairs a result filename with the URL it can be fetched from.
type DownloadLink struct {
	FileName string `json:"file_name"`
	Link     string `json:"download_link"`
}

// Wire envelopes. The service wraps every response payload in a "data" object.

type projectCreateRequest struct {
	Name string `json:"project_name,omitempty"`
}

type projectCreateEnvelope struct {
	Data Project `json:"data"`
}

type profilesEnvelope struct {
	Data struct {
		Profiles []Profile `json:"profiles"`
	} `json:"data"`
}

type statusEnvelope struct {
	Data StatusDetails `json:"data"`
}

type linksEnvelope struct {
	Data struct {
		FilesList []DownloadLink `json:"files_list"`
	} `json:"data"`
}

type editRequest struct {
	ProfileKey      int             `json:"profile_key"`
	PhotographyType PhotographyType `json:"photography_type,omitempty"`
	EditOptions     *EditOptions    `json:"edit_options,omitempty"`
}
