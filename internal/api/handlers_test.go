package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/content"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/google"
)

type fakeLoader struct {
	creds google.Credentials
}

func (f *fakeLoader) Load(ctx context.Context) (*google.Credentials, error) {
	c := f.creds
	return &c, nil
}

type fakeLister struct {
	items []google.EventItem
	err   error
	creds *google.Credentials
}

func (f *fakeLister) ListEvents(ctx context.Context, creds *google.Credentials) ([]google.EventItem, error) {
	f.creds = creds
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func newTestHandler(t *testing.T) (*Handler, *content.Repository, *fakeLoader, *fakeLister) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Google: config.GoogleConfig{APIKey: "env-key"},
	}
	repo := content.NewRepository(db)
	loader := &fakeLoader{}
	lister := &fakeLister{}
	return NewHandler(cfg, repo, loader, lister), repo, loader, lister
}

func TestListProjectsExcludesDrafts(t *testing.T) {
	h, repo, _, _ := newTestHandler(t)
	ctx := context.Background()

	if err := repo.CreateProject(ctx, &content.Project{Title: "Live", Published: true}); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if err := repo.CreateProject(ctx, &content.Project{Title: "Draft"}); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ListProjects(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	var projects []*content.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Live" {
		t.Fatalf("expected only the published project, got %+v", projects)
	}
}

func TestGetProjectHidesDrafts(t *testing.T) {
	h, repo, _, _ := newTestHandler(t)
	ctx := context.Background()

	draft := &content.Project{Title: "Draft"}
	if err := repo.CreateProject(ctx, draft); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+draft.ID, nil)
	req.SetPathValue("id", draft.ID)
	rec := httptest.NewRecorder()
	h.GetProject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("draft must not be visible, got %d", rec.Code)
	}
}

func TestGetProfileEmptyDatabase(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var profile content.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if profile.Links == nil {
		t.Fatalf("links must serialize as an object, got %s", rec.Body.String())
	}
}

func TestGetScheduleResolvesEnvFallback(t *testing.T) {
	h, _, loader, lister := newTestHandler(t)
	loader.creds = google.Credentials{CalendarID: "cal@example.com"}
	lister.items = []google.EventItem{{Summary: "Office hours"}}

	rec := httptest.NewRecorder()
	h.GetSchedule(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// The stored record had no API key; the env fallback fills it in.
	if lister.creds == nil || lister.creds.APIKey != "env-key" {
		t.Fatalf("env fallback not applied: %+v", lister.creds)
	}

	var resp struct {
		Events []google.EventItem `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Summary != "Office hours" {
		t.Fatalf("unexpected events: %+v", resp.Events)
	}
}

func TestGetScheduleDegradesOnFailure(t *testing.T) {
	h, _, _, lister := newTestHandler(t)
	lister.err = &google.FlowError{
		Kind:    google.KindEventListFailed,
		Message: "provider returned status 404",
	}

	rec := httptest.NewRecorder()
	h.GetSchedule(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))

	// Failures still answer 200 so the page renders.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Events []google.EventItem `json:"events"`
		Error  *struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if resp.Events == nil || len(resp.Events) != 0 {
		t.Fatalf("expected empty events array, got %+v", resp.Events)
	}
	if resp.Error == nil || resp.Error.Kind != string(google.KindEventListFailed) {
		t.Fatalf("expected error annotation, got %+v", resp.Error)
	}
}
