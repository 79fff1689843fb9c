// Package api implements the HTTP client for the remote photo-editing
// service: project lifecycle, image upload, edit and export operations,
// and status queries.
//
// Errors returned by the client wrap a small set of sentinel markers
// (ErrAuthentication, ErrNotFound, ErrDuplicateName, ErrTransient and
// friends) derived from the HTTP status code, so callers classify
// failures with errors.Is instead of inspecting responses. The client
// itself performs no retries; Retry and RetryPolicy let call sites
// decide which operations deserve another attempt.
package api
