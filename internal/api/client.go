package api

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.photo-editing.example.com/v1"
	defaultHTTPTimeout = 60 * time.Second
	userAgent          = "darkroom/0.1.0"
)

// HTTPDoer describes the HTTP client used by the service client. Tests inject
// instrumented implementations.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote editing service. All requests carry the bearer
// credential; non-2xx responses surface as *StatusError so callers can
// classify them against the sentinel taxonomy.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithLogger attaches a diagnostic logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a service client.
func NewClient(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key required", ErrAuthentication)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CreateProject registers a new project. An empty name requests a
// service-generated identifier; a duplicate name is rejected with
// ErrDuplicateName and must not be retried.
func (c *Client) CreateProject(ctx context.Context, name string) (Project, error) {
	var envelope projectCreateEnvelope
	body := projectCreateRequest{Name: strings.TrimSpace(name)}
	if err := c.doJSON(ctx, http.MethodPost, "/projects", body, &envelope); err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	if envelope.Data.UUID == "" {
		return Project{}, errors.New("create project: response missing project uuid")
	}
	project := envelope.Data
	if project.Name == "" {
		project.Name = body.Name
	}
	c.logger.Debug("project created", "project_uuid", project.UUID)
	return project, nil
}

// GetProfiles fetches the editing profiles available to the account.
func (c *Client) GetProfiles(ctx context.Context) ([]Profile, error) {
	var envelope profilesEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/profiles", nil, &envelope); err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	return envelope.Data.Profiles, nil
}

// UploadImage transmits a single local file into the project. The file body
// is sent as a multipart form with its MD5 digest for integrity checking.
func (c *Client) UploadImage(ctx context.Context, projectUUID, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("upload image: read %s: %w", path, err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("upload image: build form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("upload image: write form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("upload image: finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/images", c.baseURL, url.PathEscape(projectUUID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("upload image: new request: %w", err)
	}
	digest := md5.Sum(content)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Content-MD5", base64.StdEncoding.EncodeToString(digest[:]))
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload image: %w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	c.logger.Debug("image uploaded", "project_uuid", projectUUID, "file", filepath.Base(path))
	return nil
}

// StartEdit begins the editing job for an uploaded batch.
func (c *Client) StartEdit(ctx context.Context, projectUUID string, profileKey int, photographyType PhotographyType, options *EditOptions) error {
	if err := options.Validate(); err != nil {
		return fmt.Errorf("start edit: %w", err)
	}
	body := editRequest{
		ProfileKey:      profileKey,
		PhotographyType: photographyType,
		EditOptions:     options,
	}
	path := fmt.Sprintf("/projects/%s/edit", url.PathEscape(projectUUID))
	if err := c.doJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("start edit: %w", err)
	}
	return nil
}

// GetStatus returns the latest edit-job status snapshot.
func (c *Client) GetStatus(ctx context.Context, projectUUID string) (StatusDetails, error) {
	var envelope statusEnvelope
	path := fmt.Sprintf("/projects/%s/status", url.PathEscape(projectUUID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return StatusDetails{}, fmt.Errorf("get status: %w", err)
	}
	return envelope.Data, nil
}

// GetDownloadLinks returns one link per edited artifact.
func (c *Client) GetDownloadLinks(ctx context.Context, projectUUID string) ([]DownloadLink, error) {
	path := fmt.Sprintf("/projects/%s/download-links", url.PathEscape(projectUUID))
	return c.fetchLinks(ctx, path, "get download links")
}

// StartExport requests delivery-format export of the edited project.
func (c *Client) StartExport(ctx context.Context, projectUUID string) error {
	path := fmt.Sprintf("/projects/%s/export", url.PathEscape(projectUUID))
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("start export: %w", err)
	}
	return nil
}

// GetExportStatus returns the latest export-job status snapshot.
func (c *Client) GetExportStatus(ctx context.Context, projectUUID string) (StatusDetails, error) {
	var envelope statusEnvelope
	path := fmt.Sprintf("/projects/%s/export/status", url.PathEscape(projectUUID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return StatusDetails{}, fmt.Errorf("get export status: %w", err)
	}
	return envelope.Data, nil
}

// GetExportLinks returns one link per exported artifact.
func (c *Client) GetExportLinks(ctx context.Context, projectUUID string) ([]DownloadLink, error) {
	path := fmt.Sprintf("/projects/%s/export-links", url.PathEscape(projectUUID))
	return c.fetchLinks(ctx, path, "get export links")
}

func (c *Client) fetchLinks(ctx context.Context, path, op string) ([]DownloadLink, error) {
	var envelope linksEnvelope
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return envelope.Data.FilesList, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransient, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
}
