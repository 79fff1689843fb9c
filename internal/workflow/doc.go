// Package workflow sequences the full editing run: create project, validate
// and upload the local batch, start the edit job, wait for completion, then
// fetch and download results and optional exports.
//
// Each phase is a synchronization barrier; phase N+1 never starts until phase
// N's bounded worker pool has fully drained. Failures surface as PhaseError
// values so callers can tell exactly which step aborted the run. The manager
// never rolls back the remote project.
package workflow
