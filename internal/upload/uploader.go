package upload

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"darkroom/internal/api"
	"darkroom/internal/logging"
)

// DefaultMaxConcurrent bounds in-flight transfers when no limit is configured.
const DefaultMaxConcurrent = 5

// Transport is the single remote operation the uploader depends on.
type Transport interface {
	UploadImage(ctx context.Context, projectUUID, path string) error
}

// ProgressFunc is invoked exactly once per file, in completion order, after
// the file reaches a terminal per-file result. It is called from whichever
// worker goroutine finishes, so implementations must be safe for concurrent
// use and must not assume any ordering between invocations.
type ProgressFunc func(completed, total int, message string)

// Result records the terminal outcome for one submitted file.
type Result struct {
	File    string
	Success bool
	Error   string
}

// Summary aggregates per-file results for one batch.
// Invariant: Total == Successful+Failed == len(Results).
type Summary struct {
	Total      int
	Successful int
	Failed     int
	Results    []Result
}

// Uploader transmits a validated batch with bounded parallelism. Failures are
// recorded per file; the batch is always drained.
type Uploader struct {
	transport     Transport
	logger        *slog.Logger
	maxConcurrent int
	retry         api.RetryPolicy
}

// New constructs an Uploader. A nil logger disables diagnostics.
func New(transport Transport, maxConcurrent int, retry api.RetryPolicy, logger *slog.Logger) *Uploader {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Uploader{
		transport:     transport,
		logger:        logging.NewComponentLogger(logger, "uploader"),
		maxConcurrent: maxConcurrent,
		retry:         retry,
	}
}

// Upload transfers every path into the project and returns only after each
// file has a terminal result. Per-file failures never abort the batch; every
// input path appears exactly once in the summary.
func (u *Uploader) Upload(ctx context.Context, projectUUID string, paths []string, progress ProgressFunc) (Summary, error) {
	total := len(paths)
	results := make([]Result, total)

	// completed is advanced under the same lock as the callback so each
	// invocation observes a strictly increasing count.
	var progressMu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.maxConcurrent)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result := Result{File: path, Success: true}
			err := u.retry.Retry(gctx, func() error {
				return u.transport.UploadImage(gctx, projectUUID, path)
			})
			if err != nil {
				result.Success = false
				result.Error = err.Error()
				u.logger.Warn("upload failed", "file", path, logging.Error(err))
			} else {
				u.logger.Debug("upload complete", "file", path)
			}
			results[i] = result

			message := fmt.Sprintf("uploaded %s", path)
			if !result.Success {
				message = fmt.Sprintf("failed %s", path)
			}
			progressMu.Lock()
			completed++
			if progress != nil {
				progress(completed, total, message)
			}
			progressMu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait is a pure drain barrier.
	_ = g.Wait()

	summary := Summary{Total: total, Results: results}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	u.logger.Info("batch upload finished",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
	)
	return summary, nil
}
