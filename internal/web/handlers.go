package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/content"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/crypto"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/google"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/response"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/util"
)

// adminCalendarPath is where the OAuth callback sends the browser,
// carrying ?success= or ?error=&details= markers.
const adminCalendarPath = "/admin/calendar"

// credentialsStore is the persistence surface the handlers need.
type credentialsStore interface {
	Load(ctx context.Context) (*google.Credentials, error)
	Save(ctx context.Context, patch *google.CredentialsPatch) error
}

// Handlers serves the admin panel JSON API and the OAuth callback.
type Handlers struct {
	config   *config.Config
	repo     *content.Repository
	store    credentialsStore
	oauth    oauthService
	events   eventWriter
	sessions *SessionManager
	limiter  *LoginLimiter
}

// oauthService covers the consent and exchange operations.
type oauthService interface {
	BuildConsentURL(clientID, clientSecret, baseURL string) (string, error)
	ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*google.TokenGrant, error)
}

// eventWriter covers calendar event insertion.
type eventWriter interface {
	CreateEvent(ctx context.Context, creds *google.Credentials, input google.EventInput) (*google.CreateResult, error)
}

// NewHandlers creates the admin handler set.
func NewHandlers(cfg *config.Config, repo *content.Repository, store credentialsStore,
	oauth oauthService, events eventWriter, sessions *SessionManager) *Handlers {
	return &Handlers{
		config:   cfg,
		repo:     repo,
		store:    store,
		oauth:    oauth,
		events:   events,
		sessions: sessions,
		limiter:  NewLoginLimiter(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow),
	}
}

func (h *Handlers) secureCookies() bool {
	return strings.HasPrefix(h.config.Server.BaseURL, "https://")
}

// HandleLogin handles POST /admin/api/login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.limiter.Allow(ip) {
		util.Warn("login rate limited", "ip", ip)
		response.WriteError(w, http.StatusTooManyRequests, response.ErrCodeRateLimited,
			"Too many login attempts, try again later")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}

	if !crypto.VerifyPassword(req.Password, h.config.Auth.PasswordHash) {
		util.Warn("login failed", "ip", ip)
		response.WriteUnauthorized(w)
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), ip, r.UserAgent())
	if err != nil {
		util.Error("failed to create session", "error", err)
		response.WriteInternalError(w, "Failed to create session")
		return
	}

	h.limiter.Reset(ip)
	h.sessions.SetSessionCookie(w, session.ID, h.secureCookies())
	response.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleLogout handles POST /admin/api/logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID := GetSessionID(r); sessionID != "" {
		if err := h.sessions.DeleteSession(r.Context(), sessionID); err != nil {
			util.Error("failed to delete session", "error", err)
		}
	}
	ClearSessionCookie(w)
	response.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleUpdateProfile handles PUT /admin/api/profile.
func (h *Handlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile content.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}

	if err := h.repo.SaveProfile(r.Context(), &profile); err != nil {
		util.Error("failed to save profile", "error", err)
		response.WriteInternalError(w, "Failed to save profile")
		return
	}
	response.JSON(w, http.StatusOK, &profile)
}

// HandleListProjects handles GET /admin/api/projects (drafts included).
func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.ListProjects(r.Context(), false)
	if err != nil {
		util.Error("failed to list projects", "error", err)
		response.WriteInternalError(w, "Failed to list projects")
		return
	}
	response.JSON(w, http.StatusOK, projects)
}

// HandleCreateProject handles POST /admin/api/projects.
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var project content.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}
	if project.Title == "" {
		response.WriteValidationError(w, "title is required", nil)
		return
	}

	if err := h.repo.CreateProject(r.Context(), &project); err != nil {
		util.Error("failed to create project", "error", err)
		response.WriteInternalError(w, "Failed to create project")
		return
	}
	response.JSON(w, http.StatusCreated, &project)
}

// HandleUpdateProject handles PUT /admin/api/projects/{id}.
func (h *Handlers) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var project content.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}
	project.ID = r.PathValue("id")

	err := h.repo.UpdateProject(r.Context(), &project)
	if err == content.ErrNotFound {
		response.WriteNotFound(w, "Project not found")
		return
	}
	if err != nil {
		util.Error("failed to update project", "error", err, "id", project.ID)
		response.WriteInternalError(w, "Failed to update project")
		return
	}
	response.JSON(w, http.StatusOK, &project)
}

// HandleDeleteProject handles DELETE /admin/api/projects/{id}.
func (h *Handlers) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.repo.DeleteProject(r.Context(), id)
	if err == content.ErrNotFound {
		response.WriteNotFound(w, "Project not found")
		return
	}
	if err != nil {
		util.Error("failed to delete project", "error", err, "id", id)
		response.WriteInternalError(w, "Failed to delete project")
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleCreatePublication handles POST /admin/api/publications.
func (h *Handlers) HandleCreatePublication(w http.ResponseWriter, r *http.Request) {
	var pub content.Publication
	if err := json.NewDecoder(r.Body).Decode(&pub); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}
	if pub.Title == "" {
		response.WriteValidationError(w, "title is required", nil)
		return
	}

	if err := h.repo.CreatePublication(r.Context(), &pub); err != nil {
		util.Error("failed to create publication", "error", err)
		response.WriteInternalError(w, "Failed to create publication")
		return
	}
	response.JSON(w, http.StatusCreated, &pub)
}

// HandleUpdatePublication handles PUT /admin/api/publications/{id}.
func (h *Handlers) HandleUpdatePublication(w http.ResponseWriter, r *http.Request) {
	var pub content.Publication
	if err := json.NewDecoder(r.Body).Decode(&pub); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}
	pub.ID = r.PathValue("id")

	err := h.repo.UpdatePublication(r.Context(), &pub)
	if err == content.ErrNotFound {
		response.WriteNotFound(w, "Publication not found")
		return
	}
	if err != nil {
		util.Error("failed to update publication", "error", err, "id", pub.ID)
		response.WriteInternalError(w, "Failed to update publication")
		return
	}
	response.JSON(w, http.StatusOK, &pub)
}

// HandleDeletePublication handles DELETE /admin/api/publications/{id}.
func (h *Handlers) HandleDeletePublication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.repo.DeletePublication(r.Context(), id)
	if err == content.ErrNotFound {
		response.WriteNotFound(w, "Publication not found")
		return
	}
	if err != nil {
		util.Error("failed to delete publication", "error", err, "id", id)
		response.WriteInternalError(w, "Failed to delete publication")
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// calendarSettings is the redacted view of stored credentials. Secrets
// never leave the server; only their presence is reported.
type calendarSettings struct {
	CalendarID      string `json:"calendarId"`
	OAuthClientID   string `json:"oauthClientId"`
	HasAPIKey       bool   `json:"hasApiKey"`
	HasClientSecret bool   `json:"hasClientSecret"`
	HasAccessToken  bool   `json:"hasAccessToken"`
	HasRefreshToken bool   `json:"hasRefreshToken"`
}

// HandleGetCalendarSettings handles GET /admin/api/calendar.
func (h *Handlers) HandleGetCalendarSettings(w http.ResponseWriter, r *http.Request) {
	creds, err := h.store.Load(r.Context())
	if err != nil {
		util.Error("failed to load calendar credentials", "error", err)
		response.WriteInternalError(w, "Failed to load calendar settings")
		return
	}
	response.JSON(w, http.StatusOK, calendarSettings{
		CalendarID:      creds.CalendarID,
		OAuthClientID:   creds.OAuthClientID,
		HasAPIKey:       creds.APIKey != "",
		HasClientSecret: creds.OAuthClientSecret != "",
		HasAccessToken:  creds.AccessToken != "",
		HasRefreshToken: creds.RefreshToken != "",
	})
}

// HandleUpdateCalendarSettings handles PUT /admin/api/calendar. The
// body is a merge patch: absent fields keep their stored values,
// explicit empty strings clear them.
func (h *Handlers) HandleUpdateCalendarSettings(w http.ResponseWriter, r *http.Request) {
	var patch google.CredentialsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}

	if err := h.store.Save(r.Context(), &patch); err != nil {
		util.Error("failed to save calendar credentials", "error", err)
		response.WriteInternalError(w, "Failed to save calendar settings")
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleAuthorize handles GET /admin/api/calendar/authorize: it builds
// the Google consent URL from the stored (or env) OAuth client and
// redirects the browser there.
func (h *Handlers) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	creds, err := h.store.Load(r.Context())
	if err != nil {
		util.Error("failed to load calendar credentials", "error", err)
		response.WriteInternalError(w, "Failed to load calendar settings")
		return
	}
	resolved := creds.Resolved(&h.config.Google)

	consentURL, err := h.oauth.BuildConsentURL(resolved.OAuthClientID, resolved.OAuthClientSecret,
		h.config.Server.BaseURL)
	if err != nil {
		h.redirectCallbackError(w, r, err)
		return
	}

	http.Redirect(w, r, consentURL, http.StatusFound)
}

// HandleOAuthCallback handles GET /oauth/callback. Every outcome
// redirects back to the admin calendar page; failures carry the error
// kind and diagnostics in the query string.
func (h *Handlers) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		h.redirectCallbackError(w, r, &google.FlowError{
			Kind:    google.KindAuthorizationDenied,
			Message: "authorization was denied at the consent screen",
			Detail:  errParam,
		})
		return
	}

	code := q.Get("code")
	rawState := q.Get("state")
	if code == "" || rawState == "" {
		h.redirectCallbackError(w, r, &google.FlowError{
			Kind:    google.KindMissingParameters,
			Message: "callback is missing code or state",
		})
		return
	}

	state, err := google.DecodeConsentState(rawState)
	if err != nil {
		h.redirectCallbackError(w, r, err)
		return
	}

	// The redirect URI must match the one used to build the consent
	// URL byte for byte, or the provider rejects the exchange.
	redirectURI := h.config.Server.BaseURL + google.CallbackPath
	grant, err := h.oauth.ExchangeCode(r.Context(), state.ClientID, state.ClientSecret,
		code, redirectURI)
	if err != nil {
		h.redirectCallbackError(w, r, err)
		return
	}

	patch := &google.CredentialsPatch{
		OAuthClientID:     google.String(state.ClientID),
		OAuthClientSecret: google.String(state.ClientSecret),
	}
	if grant.AccessToken != "" {
		patch.AccessToken = google.String(grant.AccessToken)
	}
	if grant.RefreshToken != "" {
		patch.RefreshToken = google.String(grant.RefreshToken)
	}

	if err := h.store.Save(r.Context(), patch); err != nil {
		util.Error("failed to persist OAuth tokens", "error", err)
		h.redirectCallbackError(w, r, &google.FlowError{
			Kind:    google.KindSaveFailed,
			Message: "tokens were issued but could not be persisted",
			Err:     err,
		})
		return
	}

	util.Info("oauth authorization completed", "hasRefreshToken", grant.RefreshToken != "")
	http.Redirect(w, r, adminCalendarPath+"?success=google", http.StatusFound)
}

func (h *Handlers) redirectCallbackError(w http.ResponseWriter, r *http.Request, err error) {
	kind := google.Kind(err)
	if kind == "" {
		kind = google.KindTokenExchangeFailed
	}
	util.Warn("oauth callback failed", "kind", string(kind), "error", err)

	v := url.Values{}
	v.Set("error", string(kind))
	v.Set("details", err.Error())
	http.Redirect(w, r, adminCalendarPath+"?"+v.Encode(), http.StatusFound)
}

// HandleCreateEvent handles POST /admin/api/schedule: it inserts a
// calendar event and writes any refreshed access token back to the
// store on success.
func (h *Handlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input google.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.WriteValidationError(w, "Invalid request body", nil)
		return
	}

	creds, err := h.store.Load(r.Context())
	if err != nil {
		util.Error("failed to load calendar credentials", "error", err)
		response.WriteInternalError(w, "Failed to load calendar settings")
		return
	}
	resolved := creds.Resolved(&h.config.Google)

	result, err := h.events.CreateEvent(r.Context(), resolved, input)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	// Write-through on success only, so failed retries never persist a
	// token that did not work.
	if result.RefreshedAccessToken != "" {
		patch := &google.CredentialsPatch{AccessToken: google.String(result.RefreshedAccessToken)}
		if err := h.store.Save(r.Context(), patch); err != nil {
			util.Error("failed to persist refreshed access token", "error", err)
		}
	}

	response.JSON(w, http.StatusCreated, result.Event)
}

// writeFlowError maps an OAuth/calendar flow failure to an HTTP
// response carrying the machine-readable kind plus diagnostics.
func writeFlowError(w http.ResponseWriter, err error) {
	kind := google.Kind(err)

	details := map[string]interface{}{"kind": string(kind)}
	if detail := google.Detail(err); detail != "" {
		details["providerError"] = detail
	}
	var flowErr *google.FlowError
	if errors.As(err, &flowErr) && flowErr.Remedy != "" {
		details["remedy"] = flowErr.Remedy
	}

	switch kind {
	case google.KindMissingRequiredFields, google.KindMissingCredentials:
		response.WriteErrorWithDetails(w, http.StatusBadRequest, response.ErrCodeValidationError,
			err.Error(), details)
	case google.KindAuthenticationRequired, google.KindAuthenticationFailed:
		response.WriteErrorWithDetails(w, http.StatusBadGateway, response.ErrCodeGoogleAPIError,
			err.Error(), details)
	case google.KindNetworkTimeout:
		response.WriteErrorWithDetails(w, http.StatusGatewayTimeout, response.ErrCodeGoogleAPIError,
			err.Error(), details)
	default:
		response.WriteErrorWithDetails(w, http.StatusBadGateway, response.ErrCodeGoogleAPIError,
			err.Error(), details)
	}
}
