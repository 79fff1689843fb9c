package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"darkroom/internal/api"
	"darkroom/internal/logging"
)

// DefaultMaxConcurrent bounds in-flight transfers when no limit is configured.
const DefaultMaxConcurrent = 5

// ErrAllDownloadsFailed reports that not a single link could be fetched.
// Partial failure returns the successful paths instead.
var ErrAllDownloadsFailed = errors.New("all downloads failed")

// ProgressFunc mirrors the uploader's callback contract: once per link, in
// completion order, safe-for-concurrent-use required of the implementation.
type ProgressFunc func(completed, total int, message string)

// Downloader fetches result links with bounded parallelism and writes them
// into a target directory. Result links are presigned by the service, so the
// HTTP client carries no credential.
type Downloader struct {
	httpClient    api.HTTPDoer
	logger        *slog.Logger
	maxConcurrent int
	retry         api.RetryPolicy
}

// New constructs a Downloader. A nil client uses http.DefaultClient; a nil
// logger disables diagnostics.
func New(client api.HTTPDoer, maxConcurrent int, retry api.RetryPolicy, logger *slog.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Downloader{
		httpClient:    client,
		logger:        logging.NewComponentLogger(logger, "downloader"),
		maxConcurrent: maxConcurrent,
		retry:         retry,
	}
}

// Download fetches every link into outputDir and returns the local paths of
// the files that succeeded, in input order. The directory is created once up
// front. Filenames derive from each link's path component; when two links map
// to the same filename the later write overwrites the earlier one. Individual
// failures are retried within the bounded budget and then dropped from the
// result; only a fully failed batch is an error.
func (d *Downloader) Download(ctx context.Context, links []string, outputDir string, progress ProgressFunc) ([]string, error) {
	if len(links) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	written := make([]string, len(links))
	failures := make([]error, len(links))

	var progressMu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrent)

	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			localPath, err := d.fetchOne(gctx, link, outputDir)
			if err != nil {
				failures[i] = err
				d.logger.Warn("download failed", "link", link, logging.Error(err))
			} else {
				written[i] = localPath
				d.logger.Debug("download complete", "file", filepath.Base(localPath))
			}

			message := fmt.Sprintf("downloaded %s", filepath.Base(localPath))
			if err != nil {
				message = fmt.Sprintf("failed %s", link)
			}
			progressMu.Lock()
			completed++
			if progress != nil {
				progress(completed, len(links), message)
			}
			progressMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	paths := make([]string, 0, len(links))
	var firstErr error
	for i := range links {
		if failures[i] != nil {
			if firstErr == nil {
				firstErr = failures[i]
			}
			continue
		}
		paths = append(paths, written[i])
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrAllDownloadsFailed, firstErr)
	}
	d.logger.Info("batch download finished",
		"total", len(links),
		"successful", len(paths),
		"failed", len(links)-len(paths),
	)
	return paths, nil
}

func (d *Downloader) fetchOne(ctx context.Context, link, outputDir string) (string, error) {
	name, err := filenameFromLink(link)
	if err != nil {
		return "", err
	}
	localPath := filepath.Join(outputDir, name)

	err = d.retry.Retry(ctx, func() error {
		return d.fetchTo(ctx, link, localPath)
	})
	if err != nil {
		return "", err
	}
	return localPath, nil
}

func (d *Downloader) fetchTo(ctx context.Context, link, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", api.ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &api.StatusError{StatusCode: resp.StatusCode}
	}

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(localPath)
		return fmt.Errorf("%w: write body: %w", api.ErrTransient, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// filenameFromLink derives the local filename from the link's path component.
func filenameFromLink(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("link %q has no usable filename", link)
	}
	return name, nil
}
