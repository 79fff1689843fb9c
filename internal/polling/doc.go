// Package polling waits for remote jobs to reach a terminal state, enforcing
// a wall-clock budget and bounded per-query retries. Edit and export jobs use
// independently configured pollers.
package polling
