package content

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestProfileRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Before any save the profile is empty but usable.
	p, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Name != "" || p.Links == nil {
		t.Fatalf("unexpected empty profile: %+v", p)
	}

	err = repo.SaveProfile(ctx, &Profile{
		Name:  "Jane Doe",
		Title: "Research Engineer",
		Links: map[string]string{"github": "https://github.com/janedoe"},
	})
	if err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	// Second save replaces the singleton.
	err = repo.SaveProfile(ctx, &Profile{Name: "Jane Doe", Title: "Staff Engineer"})
	if err != nil {
		t.Fatalf("second SaveProfile failed: %v", err)
	}

	p, err = repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Title != "Staff Engineer" {
		t.Fatalf("expected replaced title, got %q", p.Title)
	}
	if len(p.Links) != 0 {
		t.Fatalf("expected links replaced, got %v", p.Links)
	}
}

func TestProjectCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p := &Project{
		Title:     "Distributed Cache",
		Summary:   "A cache",
		Tech:      []string{"go", "sqlite"},
		SortOrder: 2,
		Published: true,
	}
	if err := repo.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if !strings.HasPrefix(p.ID, "prj_") {
		t.Fatalf("unexpected project ID: %q", p.ID)
	}

	got, err := repo.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if got.Title != "Distributed Cache" || len(got.Tech) != 2 || got.Tech[0] != "go" {
		t.Fatalf("unexpected project: %+v", got)
	}

	got.Title = "Distributed Cache v2"
	got.Published = false
	if err := repo.UpdateProject(ctx, got); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	got, err = repo.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject after update failed: %v", err)
	}
	if got.Title != "Distributed Cache v2" || got.Published {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := repo.GetProject(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteProject(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListProjectsPublishedFilterAndOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seed := []*Project{
		{Title: "Second", SortOrder: 2, Published: true},
		{Title: "First", SortOrder: 1, Published: true},
		{Title: "Draft", SortOrder: 0, Published: false},
	}
	for _, p := range seed {
		if err := repo.CreateProject(ctx, p); err != nil {
			t.Fatalf("CreateProject failed: %v", err)
		}
	}

	published, err := repo.ListProjects(ctx, true)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published projects, got %d", len(published))
	}
	if published[0].Title != "First" || published[1].Title != "Second" {
		t.Fatalf("unexpected order: %q, %q", published[0].Title, published[1].Title)
	}

	all, err := repo.ListProjects(ctx, false)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(all))
	}
}

func TestPublicationCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := &Publication{Title: "Older Paper", Year: 2019}
	newer := &Publication{Title: "Newer Paper", Year: 2024, Venue: "SOSP"}
	for _, p := range []*Publication{older, newer} {
		if err := repo.CreatePublication(ctx, p); err != nil {
			t.Fatalf("CreatePublication failed: %v", err)
		}
		if !strings.HasPrefix(p.ID, "pub_") {
			t.Fatalf("unexpected publication ID: %q", p.ID)
		}
	}

	list, err := repo.ListPublications(ctx)
	if err != nil {
		t.Fatalf("ListPublications failed: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Newer Paper" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	newer.Venue = "OSDI"
	if err := repo.UpdatePublication(ctx, newer); err != nil {
		t.Fatalf("UpdatePublication failed: %v", err)
	}
	list, err = repo.ListPublications(ctx)
	if err != nil {
		t.Fatalf("ListPublications failed: %v", err)
	}
	if list[0].Venue != "OSDI" {
		t.Fatalf("update not applied: %+v", list[0])
	}

	if err := repo.DeletePublication(ctx, older.ID); err != nil {
		t.Fatalf("DeletePublication failed: %v", err)
	}
	if err := repo.UpdatePublication(ctx, &Publication{ID: "pub_missing"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
