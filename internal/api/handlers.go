// Package api serves the public read-only JSON API consumed by the
// site frontend.
package api

import (
	"context"
	"net/http"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/content"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/google"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/response"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/util"
)

// credentialsLoader reads the stored calendar credentials.
type credentialsLoader interface {
	Load(ctx context.Context) (*google.Credentials, error)
}

// eventLister lists the current month's calendar events.
type eventLister interface {
	ListEvents(ctx context.Context, creds *google.Credentials) ([]google.EventItem, error)
}

// Handler serves public content endpoints. Everything here is
// unauthenticated and read-only; drafts are never exposed.
type Handler struct {
	config *config.Config
	repo   *content.Repository
	store  credentialsLoader
	events eventLister
}

// NewHandler creates a public API handler.
func NewHandler(cfg *config.Config, repo *content.Repository, store credentialsLoader, events eventLister) *Handler {
	return &Handler{config: cfg, repo: repo, store: store, events: events}
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.repo.GetProfile(r.Context())
	if err != nil {
		util.Error("failed to load profile", "error", err)
		response.WriteInternalError(w, "Failed to load profile")
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// ListProjects handles GET /api/projects. Only published projects are
// returned.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.ListProjects(r.Context(), true)
	if err != nil {
		util.Error("failed to list projects", "error", err)
		response.WriteInternalError(w, "Failed to list projects")
		return
	}
	response.JSON(w, http.StatusOK, projects)
}

// GetProject handles GET /api/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.repo.GetProject(r.Context(), r.PathValue("id"))
	if err == content.ErrNotFound {
		response.WriteNotFound(w, "Project not found")
		return
	}
	if err != nil {
		util.Error("failed to load project", "error", err)
		response.WriteInternalError(w, "Failed to load project")
		return
	}
	if !project.Published {
		response.WriteNotFound(w, "Project not found")
		return
	}
	response.JSON(w, http.StatusOK, project)
}

// ListPublications handles GET /api/publications.
func (h *Handler) ListPublications(w http.ResponseWriter, r *http.Request) {
	publications, err := h.repo.ListPublications(r.Context())
	if err != nil {
		util.Error("failed to list publications", "error", err)
		response.WriteInternalError(w, "Failed to list publications")
		return
	}
	response.JSON(w, http.StatusOK, publications)
}

// scheduleResponse always carries an events array; listing failures
// annotate it rather than breaking the page.
type scheduleResponse struct {
	Events []google.EventItem `json:"events"`
	Error  *scheduleError     `json:"error,omitempty"`
}

type scheduleError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GetSchedule handles GET /api/schedule: this month's events from the
// configured calendar. The endpoint degrades to an empty list with an
// error annotation so visitors still get a rendered page.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	creds, err := h.store.Load(r.Context())
	if err != nil {
		util.Error("failed to load calendar credentials", "error", err)
		response.JSON(w, http.StatusOK, scheduleResponse{
			Events: []google.EventItem{},
			Error:  &scheduleError{Kind: "internal", Message: "schedule is temporarily unavailable"},
		})
		return
	}

	items, err := h.events.ListEvents(r.Context(), creds.Resolved(&h.config.Google))
	if err != nil {
		util.Warn("schedule listing failed", "kind", string(google.Kind(err)), "error", err)
		response.JSON(w, http.StatusOK, scheduleResponse{
			Events: []google.EventItem{},
			Error: &scheduleError{
				Kind:    string(google.Kind(err)),
				Message: "schedule is temporarily unavailable",
			},
		})
		return
	}
	if items == nil {
		items = []google.EventItem{}
	}

	response.JSON(w, http.StatusOK, scheduleResponse{Events: items})
}
