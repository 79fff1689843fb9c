// Package download fetches result links with bounded parallelism and writes
// them into a target directory, mirroring the uploader's partial-success
// philosophy: individual failures are retried then dropped, and only a fully
// failed batch surfaces as an error.
package download
