package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"darkroom/internal/api"
	"darkroom/internal/classify"
	"darkroom/internal/config"
	"darkroom/internal/download"
	"darkroom/internal/logging"
	"darkroom/internal/notifications"
	"darkroom/internal/polling"
	"darkroom/internal/upload"
)

// Client is the transport collaborator the workflow drives.
type Client interface {
	CreateProject(ctx context.Context, name string) (api.Project, error)
	GetProfiles(ctx context.Context) ([]api.Profile, error)
	UploadImage(ctx context.Context, projectUUID, path string) error
	StartEdit(ctx context.Context, projectUUID string, profileKey int, photographyType api.PhotographyType, options *api.EditOptions) error
	GetStatus(ctx context.Context, projectUUID string) (api.StatusDetails, error)
	GetDownloadLinks(ctx context.Context, projectUUID string) ([]api.DownloadLink, error)
	StartExport(ctx context.Context, projectUUID string) error
	GetExportStatus(ctx context.Context, projectUUID string) (api.StatusDetails, error)
	GetExportLinks(ctx context.Context, projectUUID string) ([]api.DownloadLink, error)
}

// Manager composes validation, upload, polling, and download into the
// single-call editing workflow. Each phase is a synchronization barrier: the
// next phase never starts until the previous phase has fully drained.
type Manager struct {
	client   Client
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service

	downloadClient api.HTTPDoer
	pollOpts       []polling.Option
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier overrides the notification service (used in tests).
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithDownloadClient overrides the HTTP client used for result links.
func WithDownloadClient(client api.HTTPDoer) ManagerOption {
	return func(m *Manager) { m.downloadClient = client }
}

// WithPollOptions forwards options (clock, sleeper) to the pollers.
func WithPollOptions(opts ...polling.Option) ManagerOption {
	return func(m *Manager) { m.pollOpts = opts }
}

// NewManager constructs a workflow manager.
func NewManager(client Client, cfg *config.Config, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		client:   client,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// QuickEdit runs the full workflow: create project, validate and upload the
// batch, start editing, wait for completion, then fetch and optionally
// download results and exports. The first phase failure aborts the remaining
// phases; the remote project is never rolled back.
func (m *Manager) QuickEdit(ctx context.Context, req Request) (Result, error) {
	var result Result

	profile, err := m.lookupProfile(ctx, req.ProfileKey)
	if err != nil {
		return result, m.fail(ctx, PhaseProfiles, err)
	}

	projectName := strings.TrimSpace(req.ProjectName)
	if projectName == "" {
		projectName = "darkroom-" + uuid.NewString()[:8]
	}
	project, err := m.client.CreateProject(ctx, projectName)
	if err != nil {
		return result, m.fail(ctx, PhaseCreate, err)
	}
	result.ProjectUUID = project.UUID
	log := logging.WithProject(m.logger, project.UUID)
	log.Info("project created", "name", projectName, "files", len(req.Paths))

	if err := classify.ValidateBatch(req.Paths, profile, m.logger); err != nil {
		return result, m.fail(ctx, PhaseValidate, err)
	}

	if err := m.notifier.NotifyWorkflowStarted(ctx, projectName, len(req.Paths)); err != nil {
		log.Warn("workflow notification failed", logging.Error(err))
	}

	uploader := upload.New(m.client, m.cfg.Upload.MaxConcurrent, m.uploadRetry(), m.logger)
	summary, err := uploader.Upload(ctx, project.UUID, req.Paths, req.UploadProgress)
	if err != nil {
		return result, m.fail(ctx, PhaseUpload, err)
	}
	result.UploadSummary = summary
	if summary.Successful == 0 {
		return result, m.fail(ctx, PhaseUpload, fmt.Errorf("no files uploaded successfully (%d failed)", summary.Failed))
	}

	if err := m.client.StartEdit(ctx, project.UUID, profile.Key, req.PhotographyType, req.EditOptions); err != nil {
		return result, m.fail(ctx, PhaseEdit, err)
	}
	log.Info("editing started", "profile_key", profile.Key, "profile_name", profile.Name)

	editPoller := polling.New(m.client.GetStatus, m.editPollConfig(), m.logger, m.pollOpts...)
	if _, err := editPoller.Wait(ctx, project.UUID); err != nil {
		return result, m.fail(ctx, PhasePoll, err)
	}
	log.Info("editing completed")

	links, err := m.client.GetDownloadLinks(ctx, project.UUID)
	if err != nil {
		return result, m.fail(ctx, PhaseLinks, err)
	}
	result.DownloadLinks = linkURLs(links)

	if req.Download {
		downloader := download.New(m.downloadClient, m.cfg.Download.MaxConcurrent, m.downloadRetry(), m.logger)
		files, err := downloader.Download(ctx, result.DownloadLinks, m.downloadDir(req), req.DownloadProgress)
		if err != nil {
			return result, m.fail(ctx, PhaseDownload, err)
		}
		result.DownloadedFiles = files
		if err := m.notifier.NotifyEditingCompleted(ctx, projectName, len(files)); err != nil {
			log.Warn("completion notification failed", logging.Error(err))
		}
	}

	if req.Export {
		if err := m.runExport(ctx, project.UUID, projectName, req, &result); err != nil {
			return result, err
		}
	}

	log.Info("workflow complete",
		"uploaded", summary.Successful,
		"downloaded", len(result.DownloadedFiles),
		"exported", len(result.ExportedFiles),
	)
	return result, nil
}

func (m *Manager) runExport(ctx context.Context, projectUUID, projectName string, req Request, result *Result) error {
	if err := m.client.StartExport(ctx, projectUUID); err != nil {
		return m.fail(ctx, PhaseExport, err)
	}

	exportPoller := polling.New(m.client.GetExportStatus, m.exportPollConfig(), m.logger, m.pollOpts...)
	if _, err := exportPoller.Wait(ctx, projectUUID); err != nil {
		return m.fail(ctx, PhaseExport, err)
	}

	links, err := m.client.GetExportLinks(ctx, projectUUID)
	if err != nil {
		return m.fail(ctx, PhaseExport, err)
	}
	result.ExportLinks = linkURLs(links)

	if req.Download {
		exportDir := filepath.Join(m.downloadDir(req), "exported")
		downloader := download.New(m.downloadClient, m.cfg.Download.MaxConcurrent, m.downloadRetry(), m.logger)
		files, err := downloader.Download(ctx, result.ExportLinks, exportDir, req.DownloadProgress)
		if err != nil {
			return m.fail(ctx, PhaseExport, err)
		}
		result.ExportedFiles = files
		if err := m.notifier.NotifyExportCompleted(ctx, projectName, len(files)); err != nil {
			m.logger.Warn("export notification failed", logging.Error(err))
		}
	}
	return nil
}

func (m *Manager) lookupProfile(ctx context.Context, key int) (api.Profile, error) {
	profiles, err := m.client.GetProfiles(ctx)
	if err != nil {
		return api.Profile{}, err
	}
	for _, p := range profiles {
		if p.Key == key {
			return p, nil
		}
	}
	return api.Profile{}, fmt.Errorf("%w: profile key %d", api.ErrNotFound, key)
}

func (m *Manager) fail(ctx context.Context, phase Phase, err error) error {
	wrapped := &PhaseError{Phase: phase, Err: err}
	if notifyErr := m.notifier.NotifyError(ctx, wrapped, string(phase)); notifyErr != nil {
		m.logger.Warn("error notification failed", logging.Error(notifyErr))
	}
	m.logger.Error("workflow phase failed", logging.FieldPhase, string(phase), logging.Error(err))
	return wrapped
}

func (m *Manager) downloadDir(req Request) string {
	if strings.TrimSpace(req.DownloadDir) != "" {
		return req.DownloadDir
	}
	return m.cfg.Download.Dir
}

func (m *Manager) uploadRetry() api.RetryPolicy {
	policy := api.DefaultRetryPolicy()
	policy.MaxAttempts = m.cfg.Upload.RetryAttempts
	policy.BaseDelay = time.Duration(m.cfg.Upload.RetryDelayMS) * time.Millisecond
	return policy
}

func (m *Manager) downloadRetry() api.RetryPolicy {
	policy := api.DefaultRetryPolicy()
	policy.MaxAttempts = m.cfg.Download.RetryAttempts
	policy.BaseDelay = time.Duration(m.cfg.Download.RetryDelayMS) * time.Millisecond
	return policy
}

func (m *Manager) editPollConfig() polling.Config {
	return polling.Config{
		Interval:   time.Duration(m.cfg.Polling.EditIntervalSeconds) * time.Second,
		Timeout:    time.Duration(m.cfg.Polling.EditTimeoutSeconds) * time.Second,
		Backoff:    m.cfg.Polling.Backoff,
		QueryRetry: api.DefaultRetryPolicy(),
	}
}

func (m *Manager) exportPollConfig() polling.Config {
	return polling.Config{
		Interval:   time.Duration(m.cfg.Polling.ExportIntervalSeconds) * time.Second,
		Timeout:    time.Duration(m.cfg.Polling.ExportTimeoutSeconds) * time.Second,
		Backoff:    m.cfg.Polling.Backoff,
		QueryRetry: api.DefaultRetryPolicy(),
	}
}

func linkURLs(links []api.DownloadLink) []string {
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.Link)
	}
	return urls
}
