package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel markers for failure classification. Callers match with errors.Is
// and decide retry/abort policy from the marker rather than the message.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrNotFound       = errors.New("not found")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrTransient      = errors.New("transient failure")
	ErrTimeout        = errors.New("timeout")
	ErrEditingFailed  = errors.New("editing failed")
)

// StatusError carries the HTTP status and response body of a rejected request.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// Unwrap maps the HTTP status onto the sentinel taxonomy so call sites can
// classify with errors.Is without inspecting status codes themselves.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrAuthentication
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrDuplicateName
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= http.StatusInternalServerError:
		return ErrTransient
	default:
		return nil
	}
}

// Retryable reports whether err is worth retrying at the point of occurrence.
// Authentication, validation, and identity errors are never retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateName) {
		return false
	}
	return errors.Is(err, ErrTransient)
}
