// Package web serves the admin panel API and the OAuth callback.
package web

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/crypto"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/response"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/util"
)

const sessionCookieName = "portfolio_session"

// SessionManager handles admin panel sessions. There is a single
// administrator, so sessions carry no user identity.
type SessionManager struct {
	db       *database.DB
	duration time.Duration
}

// NewSessionManager creates a session manager.
func NewSessionManager(db *database.DB, cfg *config.SessionsConfig) *SessionManager {
	return &SessionManager{db: db, duration: cfg.Duration}
}

// Session is an admin panel session.
type Session struct {
	ID        string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateSession creates a new session.
func (m *SessionManager) CreateSession(ctx context.Context, ipAddress, userAgent string) (*Session, error) {
	sessionID, err := crypto.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(m.duration)

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO sessions (id, ip_address, user_agent, expires_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, ipAddress, userAgent, expiresAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        sessionID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateSession returns the session, or nil when it is missing or
// expired.
func (m *SessionManager) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	var ipAddress, userAgent sql.NullString
	var createdAt, expiresAt string

	err := m.db.QueryRowContext(ctx, `
		SELECT id, ip_address, user_agent, created_at, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > datetime('now')
	`, sessionID).Scan(&session.ID, &ipAddress, &userAgent, &createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.IPAddress = ipAddress.String
	session.UserAgent = userAgent.String
	session.CreatedAt, _ = util.ParseSQLiteTimestamp(createdAt)
	session.ExpiresAt, _ = util.ParseSQLiteTimestamp(expiresAt)

	return &session, nil
}

// DeleteSession removes a session.
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteExpired removes expired sessions and reports how many were
// deleted.
func (m *SessionManager) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetSessionCookie sets the session cookie on the response.
func (m *SessionManager) SetSessionCookie(w http.ResponseWriter, sessionID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(m.duration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionID retrieves the session ID from the request cookie.
func GetSessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireSession guards admin API handlers. The admin panel is a JSON
// API, so failures answer 401 rather than redirecting.
func (m *SessionManager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := GetSessionID(r)
		if sessionID == "" {
			response.WriteUnauthorized(w)
			return
		}

		session, err := m.ValidateSession(r.Context(), sessionID)
		if err != nil {
			util.Error("session validation failed", "error", err)
			response.WriteInternalError(w, "Failed to validate session")
			return
		}
		if session == nil {
			ClearSessionCookie(w)
			response.WriteUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
