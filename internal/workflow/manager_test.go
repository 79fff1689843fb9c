package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"darkroom/internal/api"
	"darkroom/internal/classify"
	"darkroom/internal/config"
	"darkroom/internal/polling"
	"darkroom/internal/testsupport"
)

type fakeClient struct {
	mu sync.Mutex

	profiles    []api.Profile
	createErr   error
	createdName string

	uploads     []string
	failUploads map[string]bool

	editStarted   bool
	editProfile   int
	editOptions   *api.EditOptions
	exportStarted bool

	statusSeq   []api.Status
	statusCalls int
	exportSeq   []api.Status
	exportCalls int

	downloadLinks []api.DownloadLink
	exportLinks   []api.DownloadLink
}

func (f *fakeClient) CreateProject(ctx context.Context, name string) (api.Project, error) {
	if f.createErr != nil {
		return api.Project{}, f.createErr
	}
	f.createdName = name
	return api.Project{UUID: "proj-uuid-1", Name: name}, nil
}

func (f *fakeClient) GetProfiles(ctx context.Context) ([]api.Profile, error) {
	return f.profiles, nil
}

func (f *fakeClient) UploadImage(ctx context.Context, projectUUID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, path)
	if f.failUploads[path] {
		return fmt.Errorf("%w: refused %s", api.ErrTransient, path)
	}
	return nil
}

func (f *fakeClient) StartEdit(ctx context.Context, projectUUID string, profileKey int, photographyType api.PhotographyType, options *api.EditOptions) error {
	f.editStarted = true
	f.editProfile = profileKey
	f.editOptions = options
	return nil
}

func (f *fakeClient) GetStatus(ctx context.Context, projectUUID string) (api.StatusDetails, error) {
	idx := f.statusCalls
	f.statusCalls++
	if idx >= len(f.statusSeq) {
		idx = len(f.statusSeq) - 1
	}
	return api.StatusDetails{Status: f.statusSeq[idx]}, nil
}

func (f *fakeClient) GetDownloadLinks(ctx context.Context, projectUUID string) ([]api.DownloadLink, error) {
	return f.downloadLinks, nil
}

func (f *fakeClient) StartExport(ctx context.Context, projectUUID string) error {
	f.exportStarted = true
	return nil
}

func (f *fakeClient) GetExportStatus(ctx context.Context, projectUUID string) (api.StatusDetails, error) {
	idx := f.exportCalls
	f.exportCalls++
	if idx >= len(f.exportSeq) {
		idx = len(f.exportSeq) - 1
	}
	return api.StatusDetails{Status: f.exportSeq[idx]}, nil
}

func (f *fakeClient) GetExportLinks(ctx context.Context, projectUUID string) ([]api.DownloadLink, error) {
	return f.exportLinks, nil
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func rawProfile() api.Profile {
	return api.Profile{Key: 5700, Name: "Signature", Type: "TALENT", ImageType: api.ImageTypeRAW}
}

func newTestManager(t *testing.T, client *fakeClient, cfg *config.Config, extra ...ManagerOption) *Manager {
	t.Helper()
	opts := append([]ManagerOption{WithPollOptions(polling.WithSleeper(noSleep))}, extra...)
	return NewManager(client, cfg, nil, opts...)
}

func TestQuickEditHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "edited bytes")
	}))
	defer server.Close()

	client := &fakeClient{
		profiles:  []api.Profile{rawProfile()},
		statusSeq: []api.Status{api.StatusInProgress, api.StatusCompleted},
		downloadLinks: []api.DownloadLink{
			{FileName: "image1.jpg", Link: server.URL + "/results/image1.jpg"},
			{FileName: "image2.jpg", Link: server.URL + "/results/image2.jpg"},
		},
	}
	outDir := filepath.Join(t.TempDir(), "out")
	cfg := testsupport.NewConfig(t, testsupport.WithMaxConcurrent(2))
	mgr := newTestManager(t, client, cfg, WithDownloadClient(server.Client()))

	result, err := mgr.QuickEdit(context.Background(), Request{
		ProjectName: "Test",
		ProfileKey:  5700,
		Paths:       testsupport.ImageBatch(t, "a.dng", "b.cr2"),
		Download:    true,
		DownloadDir: outDir,
	})
	if err != nil {
		t.Fatalf("QuickEdit returned error: %v", err)
	}
	if result.ProjectUUID != "proj-uuid-1" {
		t.Fatalf("unexpected project uuid: %q", result.ProjectUUID)
	}
	if client.createdName != "Test" {
		t.Fatalf("unexpected project name: %q", client.createdName)
	}
	s := result.UploadSummary
	if s.Total != 2 || s.Successful != 2 || s.Failed != 0 {
		t.Fatalf("unexpected upload summary: %+v", s)
	}
	if client.statusCalls != 2 {
		t.Fatalf("expected 2 polls before COMPLETED, got %d", client.statusCalls)
	}
	if len(result.DownloadedFiles) != 2 {
		t.Fatalf("expected 2 downloaded files, got %v", result.DownloadedFiles)
	}
	for _, p := range result.DownloadedFiles {
		if !strings.HasPrefix(p, outDir) {
			t.Fatalf("downloaded file %q outside output dir %q", p, outDir)
		}
	}
	if client.exportStarted {
		t.Fatal("export started without being requested")
	}
}

func TestQuickEditValidationFailureSkipsUpload(t *testing.T) {
	client := &fakeClient{profiles: []api.Profile{rawProfile()}}
	mgr := newTestManager(t, client, testConfig(t))

	_, err := mgr.QuickEdit(context.Background(), Request{
		ProfileKey: 5700,
		Paths:      []string{"a.cr2", "b.jpg"},
	})
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected PhaseError, got %v", err)
	}
	if phaseErr.Phase != PhaseValidate {
		t.Fatalf("unexpected phase: %s", phaseErr.Phase)
	}
	var verr *classify.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Paths) != 1 || verr.Paths[0] != "b.jpg" {
		t.Fatalf("unexpected offending paths: %v", verr.Paths)
	}
	if len(client.uploads) != 0 {
		t.Fatalf("expected no uploads, got %v", client.uploads)
	}
}

func TestQuickEditUnknownProfileKey(t *testing.T) {
	client := &fakeClient{profiles: []api.Profile{rawProfile()}}
	mgr := newTestManager(t, client, testConfig(t))

	_, err := mgr.QuickEdit(context.Background(), Request{ProfileKey: 42, Paths: []string{"a.dng"}})
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) || phaseErr.Phase != PhaseProfiles {
		t.Fatalf("expected profiles phase error, got %v", err)
	}
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuickEditDuplicateNameIsFatal(t *testing.T) {
	client := &fakeClient{
		profiles:  []api.Profile{rawProfile()},
		createErr: fmt.Errorf("create project: %w", api.ErrDuplicateName),
	}
	mgr := newTestManager(t, client, testConfig(t))

	_, err := mgr.QuickEdit(context.Background(), Request{
		ProjectName: "Taken",
		ProfileKey:  5700,
		Paths:       []string{"a.dng"},
	})
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) || phaseErr.Phase != PhaseCreate {
		t.Fatalf("expected create phase error, got %v", err)
	}
	if !errors.Is(err, api.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestQuickEditAutoGeneratesProjectName(t *testing.T) {
	client := &fakeClient{
		profiles:  []api.Profile{rawProfile()},
		statusSeq: []api.Status{api.StatusCompleted},
	}
	mgr := newTestManager(t, client, testConfig(t))

	if _, err := mgr.QuickEdit(context.Background(), Request{ProfileKey: 5700, Paths: []string{"a.dng"}}); err != nil {
		t.Fatalf("QuickEdit returned error: %v", err)
	}
	if !strings.HasPrefix(client.createdName, "darkroom-") {
		t.Fatalf("expected generated name, got %q", client.createdName)
	}
}

func TestQuickEditAbortsWhenNoUploadsSucceed(t *testing.T) {
	client := &fakeClient{
		profiles:    []api.Profile{rawProfile()},
		failUploads: map[string]bool{"a.dng": true, "b.dng": true},
	}
	mgr := newTestManager(t, client, testConfig(t))

	_, err := mgr.QuickEdit(context.Background(), Request{ProfileKey: 5700, Paths: []string{"a.dng", "b.dng"}})
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) || phaseErr.Phase != PhaseUpload {
		t.Fatalf("expected upload phase error, got %v", err)
	}
	if client.editStarted {
		t.Fatal("edit started despite failed batch")
	}
}

func TestQuickEditPartialUploadProceeds(t *testing.T) {
	client := &fakeClient{
		profiles:    []api.Profile{rawProfile()},
		failUploads: map[string]bool{"b.dng": true},
		statusSeq:   []api.Status{api.StatusCompleted},
	}
	mgr := newTestManager(t, client, testConfig(t))

	result, err := mgr.QuickEdit(context.Background(), Request{ProfileKey: 5700, Paths: []string{"a.dng", "b.dng"}})
	if err != nil {
		t.Fatalf("QuickEdit returned error: %v", err)
	}
	if result.UploadSummary.Successful != 1 || result.UploadSummary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", result.UploadSummary)
	}
	if !client.editStarted {
		t.Fatal("expected edit to start on partial success")
	}
}

func TestQuickEditFailedJobSurfacesMessage(t *testing.T) {
	client := &fakeClient{
		profiles:  []api.Profile{rawProfile()},
		statusSeq: []api.Status{api.StatusInProgress, api.StatusFailed},
	}
	mgr := newTestManager(t, client, testConfig(t))

	_, err := mgr.QuickEdit(context.Background(), Request{ProfileKey: 5700, Paths: []string{"a.dng"}})
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) || phaseErr.Phase != PhasePoll {
		t.Fatalf("expected poll phase error, got %v", err)
	}
	var failed *polling.EditingFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected EditingFailedError, got %v", err)
	}
}

func TestQuickEditExportFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "bytes")
	}))
	defer server.Close()

	client := &fakeClient{
		profiles:  []api.Profile{rawProfile()},
		statusSeq: []api.Status{api.StatusCompleted},
		exportSeq: []api.Status{api.StatusExporting, api.StatusExported},
		downloadLinks: []api.DownloadLink{
			{FileName: "edit.jpg", Link: server.URL + "/r/edit.jpg"},
		},
		exportLinks: []api.DownloadLink{
			{FileName: "final.jpg", Link: server.URL + "/x/final.jpg"},
		},
	}
	outDir := t.TempDir()
	mgr := newTestManager(t, client, testConfig(t), WithDownloadClient(server.Client()))

	result, err := mgr.QuickEdit(context.Background(), Request{
		ProfileKey:  5700,
		Paths:       []string{"a.dng"},
		Download:    true,
		DownloadDir: outDir,
		Export:      true,
	})
	if err != nil {
		t.Fatalf("QuickEdit returned error: %v", err)
	}
	if !client.exportStarted {
		t.Fatal("expected export to start")
	}
	if client.exportCalls != 2 {
		t.Fatalf("expected 2 export polls, got %d", client.exportCalls)
	}
	if len(result.ExportedFiles) != 1 {
		t.Fatalf("expected 1 exported file, got %v", result.ExportedFiles)
	}
	wantDir := filepath.Join(outDir, "exported")
	if filepath.Dir(result.ExportedFiles[0]) != wantDir {
		t.Fatalf("exported file %q not under %q", result.ExportedFiles[0], wantDir)
	}
	if len(result.ExportLinks) != 1 {
		t.Fatalf("expected export links recorded, got %v", result.ExportLinks)
	}
}

func TestQuickEditEditOptionsPassedThrough(t *testing.T) {
	client := &fakeClient{
		profiles:  []api.Profile{rawProfile()},
		statusSeq: []api.Status{api.StatusCompleted},
	}
	mgr := newTestManager(t, client, testConfig(t))

	options := &api.EditOptions{Crop: api.Bool(true), Straighten: api.Bool(true)}
	_, err := mgr.QuickEdit(context.Background(), Request{
		ProfileKey:  5700,
		Paths:       []string{"a.dng"},
		EditOptions: options,
	})
	if err != nil {
		t.Fatalf("QuickEdit returned error: %v", err)
	}
	if client.editProfile != 5700 {
		t.Fatalf("unexpected profile key: %d", client.editProfile)
	}
	if client.editOptions == nil || client.editOptions.Crop == nil || !*client.editOptions.Crop {
		t.Fatalf("edit options not passed through: %+v", client.editOptions)
	}
}
