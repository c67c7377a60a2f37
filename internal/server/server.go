// Package server provides the HTTP server and routing for the
// portfolio site.
package server

import (
	"context"
	"net/http"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/api"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/content"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/google"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/server/middleware"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/util"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/web"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/workers"
)

// Server is the portfolio HTTP server.
type Server struct {
	config        *config.Config
	db            *database.DB
	router        *http.ServeMux
	repo          *content.Repository
	credStore     *google.Store
	oauthClient   *google.OAuthClient
	eventClient   *google.EventClient
	sessionMgr    *web.SessionManager
	apiHandler    *api.Handler
	webHandlers   *web.Handlers
	cleanupWorker *workers.SessionCleanupWorker
}

// New creates a Server with all components wired.
func New(cfg *config.Config, db *database.DB) (*Server, error) {
	location, err := util.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		return nil, err
	}

	repo := content.NewRepository(db)
	credStore := google.NewStore(db)
	oauthClient := google.NewOAuthClient(cfg.Google.Scopes)
	eventClient := google.NewEventClient(oauthClient, location)

	sessionMgr := web.NewSessionManager(db, &cfg.Sessions)

	apiHandler := api.NewHandler(cfg, repo, credStore, eventClient)
	webHandlers := web.NewHandlers(cfg, repo, credStore, oauthClient, eventClient, sessionMgr)

	cleanupWorker := workers.NewSessionCleanupWorker(sessionMgr, cfg.Sessions.CleanupInterval)

	s := &Server{
		config:        cfg,
		db:            db,
		router:        http.NewServeMux(),
		repo:          repo,
		credStore:     credStore,
		oauthClient:   oauthClient,
		eventClient:   eventClient,
		sessionMgr:    sessionMgr,
		apiHandler:    apiHandler,
		webHandlers:   webHandlers,
		cleanupWorker: cleanupWorker,
	}

	s.setupRoutes()

	return s, nil
}

// Handler returns the HTTP handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.router

	handler = middleware.Recovery(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.SecurityHeaders(handler)

	return handler
}

// StartBackgroundWorkers starts maintenance loops.
func (s *Server) StartBackgroundWorkers(ctx context.Context) {
	go s.cleanupWorker.Start(ctx)
	util.Info("Background workers started")
}

// DB returns the database connection.
func (s *Server) DB() *database.DB {
	return s.db
}
