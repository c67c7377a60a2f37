// Package server provides route registration.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/google"
)

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.router.HandleFunc("GET /health", s.handleHealth)

	// Public content API
	s.router.HandleFunc("GET /api/profile", s.apiHandler.GetProfile)
	s.router.HandleFunc("GET /api/projects", s.apiHandler.ListProjects)
	s.router.HandleFunc("GET /api/projects/{id}", s.apiHandler.GetProject)
	s.router.HandleFunc("GET /api/publications", s.apiHandler.ListPublications)
	s.router.HandleFunc("GET /api/schedule", s.apiHandler.GetSchedule)

	// OAuth callback, reached by a browser redirect from Google
	s.router.HandleFunc("GET "+google.CallbackPath, s.webHandlers.HandleOAuthCallback)

	// Admin authentication
	s.router.HandleFunc("POST /admin/api/login", s.webHandlers.HandleLogin)
	s.router.HandleFunc("POST /admin/api/logout", s.webHandlers.HandleLogout)

	// Admin content management, session-guarded
	admin := http.NewServeMux()
	admin.HandleFunc("PUT /admin/api/profile", s.webHandlers.HandleUpdateProfile)
	admin.HandleFunc("GET /admin/api/projects", s.webHandlers.HandleListProjects)
	admin.HandleFunc("POST /admin/api/projects", s.webHandlers.HandleCreateProject)
	admin.HandleFunc("PUT /admin/api/projects/{id}", s.webHandlers.HandleUpdateProject)
	admin.HandleFunc("DELETE /admin/api/projects/{id}", s.webHandlers.HandleDeleteProject)
	admin.HandleFunc("POST /admin/api/publications", s.webHandlers.HandleCreatePublication)
	admin.HandleFunc("PUT /admin/api/publications/{id}", s.webHandlers.HandleUpdatePublication)
	admin.HandleFunc("DELETE /admin/api/publications/{id}", s.webHandlers.HandleDeletePublication)
	admin.HandleFunc("GET /admin/api/calendar", s.webHandlers.HandleGetCalendarSettings)
	admin.HandleFunc("PUT /admin/api/calendar", s.webHandlers.HandleUpdateCalendarSettings)
	admin.HandleFunc("GET /admin/api/calendar/authorize", s.webHandlers.HandleAuthorize)
	admin.HandleFunc("POST /admin/api/schedule", s.webHandlers.HandleCreateEvent)
	s.router.Handle("/admin/api/", s.sessionMgr.RequireSession(admin))
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	oauthStatus := "not_configured"
	creds, err := s.credStore.Load(r.Context())
	if err == nil {
		resolved := creds.Resolved(&s.config.Google)
		switch {
		case resolved.RefreshToken != "":
			oauthStatus = "connected"
		case resolved.HasOAuthClient():
			oauthStatus = "configured"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"oauth":  oauthStatus,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
