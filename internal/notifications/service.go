package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"darkroom/internal/config"
)

const userAgent = "darkroom/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyWorkflowStarted(ctx context.Context, projectName string, fileCount int) error
	NotifyEditingCompleted(ctx context.Context, projectName string, downloaded int) error
	NotifyExportCompleted(ctx context.Context, projectName string, exported int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		workflow: cfg.Notifications.Workflow,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	workflow bool
	errors   bool
}

func (n *ntfyService) NotifyWorkflowStarted(ctx context.Context, projectName string, fileCount int) error {
	if !n.workflow {
		return nil
	}
	data := payload{
		title:   "Darkroom - Editing Started",
		message: fmt.Sprintf("Editing %d file(s) in project %s", fileCount, strings.TrimSpace(projectName)),
		tags:    []string{"darkroom", "workflow", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEditingCompleted(ctx context.Context, projectName string, downloaded int) error {
	if !n.workflow {
		return nil
	}
	data := payload{
		title:    "Darkroom - Editing Complete",
		message:  fmt.Sprintf("Project %s finished: %d edited file(s) saved", strings.TrimSpace(projectName), downloaded),
		tags:     []string{"darkroom", "workflow", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExportCompleted(ctx context.Context, projectName string, exported int) error {
	if !n.workflow {
		return nil
	}
	data := payload{
		title:   "Darkroom - Export Complete",
		message: fmt.Sprintf("Project %s export finished: %d file(s)", strings.TrimSpace(projectName), exported),
		tags:    []string{"darkroom", "export", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" in ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Darkroom - Error",
		message:  builder.String(),
		tags:     []string{"darkroom", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Darkroom - Test",
		message:  "Notification system test",
		tags:     []string{"darkroom", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyWorkflowStarted(context.Context, string, int) error     { return nil }
func (noopService) NotifyEditingCompleted(context.Context, string, int) error    { return nil }
func (noopService) NotifyExportCompleted(context.Context, string, int) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
