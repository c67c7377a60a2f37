package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestOAuthClient(tokenURL string) *OAuthClient {
	return &OAuthClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		authURL:    "https://accounts.google.com/o/oauth2/auth",
		tokenURL:   tokenURL,
		scopes: []string{
			"https://www.googleapis.com/auth/calendar",
			"https://www.googleapis.com/auth/calendar.events",
		},
	}
}

func TestBuildConsentURL(t *testing.T) {
	c := newTestOAuthClient("https://oauth2.googleapis.com/token")

	raw, err := c.BuildConsentURL("client-1", "secret-1", "http://example.com")
	if err != nil {
		t.Fatalf("BuildConsentURL failed: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("consent URL does not parse: %v", err)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-1" {
		t.Fatalf("client_id mismatch: %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://example.com"+CallbackPath {
		t.Fatalf("redirect_uri mismatch: %q", q.Get("redirect_uri"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type mismatch: %q", q.Get("response_type"))
	}
	if q.Get("access_type") != "offline" {
		t.Fatalf("access_type mismatch: %q", q.Get("access_type"))
	}
	if q.Get("prompt") != "consent" {
		t.Fatalf("consent not forced: %v", q)
	}

	state, err := DecodeConsentState(q.Get("state"))
	if err != nil {
		t.Fatalf("state does not decode: %v", err)
	}
	if state.ClientID != "client-1" || state.ClientSecret != "secret-1" {
		t.Fatalf("state payload mismatch: %+v", state)
	}
}

func TestBuildConsentURLMissingCredentials(t *testing.T) {
	c := newTestOAuthClient("https://oauth2.googleapis.com/token")

	for _, tc := range []struct{ id, secret string }{
		{"", "secret"},
		{"client", ""},
		{"", ""},
	} {
		_, err := c.BuildConsentURL(tc.id, tc.secret, "http://example.com")
		if Kind(err) != KindMissingCredentials {
			t.Fatalf("expected MissingCredentials for %+v, got %v", tc, err)
		}
	}
}

func TestDecodeConsentStateInvalid(t *testing.T) {
	_, err := DecodeConsentState("not-json")
	if Kind(err) != KindInvalidState {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "at-new",
			"refresh_token": "rt-new",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	c := newTestOAuthClient(srv.URL)
	grant, err := c.ExchangeCode(context.Background(), "client-1", "secret-1", "code-1", "http://example.com"+CallbackPath)
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}

	if grant.AccessToken != "at-new" || grant.RefreshToken != "rt-new" || grant.ExpiresIn != 3600 {
		t.Fatalf("unexpected grant: %+v", grant)
	}

	if gotForm.Get("grant_type") != "authorization_code" {
		t.Fatalf("grant_type mismatch: %q", gotForm.Get("grant_type"))
	}
	if gotForm.Get("code") != "code-1" {
		t.Fatalf("code mismatch: %q", gotForm.Get("code"))
	}
	if gotForm.Get("redirect_uri") != "http://example.com"+CallbackPath {
		t.Fatalf("redirect_uri mismatch: %q", gotForm.Get("redirect_uri"))
	}
}

func TestExchangeCodeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Code was already redeemed."}`))
	}))
	defer srv.Close()

	c := newTestOAuthClient(srv.URL)
	_, err := c.ExchangeCode(context.Background(), "client-1", "secret-1", "stale-code", "http://example.com"+CallbackPath)

	if Kind(err) != KindTokenExchangeFailed {
		t.Fatalf("expected TokenExchangeFailed, got %v", err)
	}
	if detail := Detail(err); detail == "" || !json.Valid([]byte(detail)) {
		t.Fatalf("expected provider error body attached, got %q", detail)
	}
}

func TestExchangeCodeNoTokensReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"expires_in": 3600}`))
	}))
	defer srv.Close()

	c := newTestOAuthClient(srv.URL)
	_, err := c.ExchangeCode(context.Background(), "client-1", "secret-1", "code-1", "http://example.com"+CallbackPath)

	if Kind(err) != KindNoTokensReturned {
		t.Fatalf("expected NoTokensReturned, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Fatalf("grant_type mismatch: %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("refresh_token") != "rt-1" {
			t.Fatalf("refresh_token mismatch: %q", r.PostForm.Get("refresh_token"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at-refreshed",
			"expires_in":   3599,
		})
	}))
	defer srv.Close()

	c := newTestOAuthClient(srv.URL)
	grant, err := c.Refresh(context.Background(), "rt-1", "client-1", "secret-1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if grant.AccessToken != "at-refreshed" {
		t.Fatalf("unexpected access token: %q", grant.AccessToken)
	}
}

func TestRefreshMissingInputsNoNetworkCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := newTestOAuthClient(srv.URL)
	for _, tc := range [][3]string{
		{"", "client", "secret"},
		{"rt", "", "secret"},
		{"rt", "client", ""},
	} {
		_, err := c.Refresh(context.Background(), tc[0], tc[1], tc[2])
		if Kind(err) != KindMissingRefreshInputs {
			t.Fatalf("expected MissingRefreshInputs for %v, got %v", tc, err)
		}
	}

	if calls != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
}

func TestRefreshProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := newTestOAuthClient(srv.URL)
	_, err := c.Refresh(context.Background(), "revoked-rt", "client-1", "secret-1")

	if Kind(err) != KindRefreshFailed {
		t.Fatalf("expected RefreshFailed, got %v", err)
	}
	if Detail(err) != `{"error":"invalid_grant"}` {
		t.Fatalf("expected provider body, got %q", Detail(err))
	}
}
