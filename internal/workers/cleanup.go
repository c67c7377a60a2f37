// Package workers contains background maintenance loops.
package workers

import (
	"context"
	"time"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/util"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/web"
)

// SessionCleanupWorker periodically deletes expired admin sessions.
type SessionCleanupWorker struct {
	sessions *web.SessionManager
	interval time.Duration
}

// NewSessionCleanupWorker creates a session cleanup worker.
func NewSessionCleanupWorker(sessions *web.SessionManager, interval time.Duration) *SessionCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionCleanupWorker{sessions: sessions, interval: interval}
}

// Start runs the cleanup loop until the context is cancelled.
func (w *SessionCleanupWorker) Start(ctx context.Context) {
	util.Info("Starting session cleanup worker", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run immediately on start
	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			util.Info("Session cleanup worker stopping")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *SessionCleanupWorker) run(ctx context.Context) {
	deleted, err := w.sessions.DeleteExpired(ctx)
	if err != nil {
		util.Error("failed to clean up expired sessions", "error", err)
		return
	}
	if deleted > 0 {
		util.Info("Cleaned up expired sessions", "count", deleted)
	}
}
