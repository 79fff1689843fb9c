// Package upload drains a validated image batch into a project with bounded
// parallelism, recording a terminal per-file result instead of aborting on
// individual failures.
package upload
