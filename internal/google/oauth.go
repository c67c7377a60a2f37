package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// CallbackPath is the fixed OAuth redirect path. The redirect URI built
// from it must byte-for-byte match the URI registered with Google and
// the one sent on the consent request, or the code exchange is rejected.
const CallbackPath = "/oauth/callback"

// providerTimeout bounds every outbound call to Google.
const providerTimeout = 15 * time.Second

// OAuthClient talks to Google's consent and token endpoints. It holds
// no credentials of its own; callers pass them per operation. It never
// touches the credentials store — persisting rotated tokens is the
// caller's decision.
type OAuthClient struct {
	httpClient *http.Client
	authURL    string
	tokenURL   string
	scopes     []string
}

// NewOAuthClient creates a client against Google's endpoints.
func NewOAuthClient(scopes []string) *OAuthClient {
	return &OAuthClient{
		httpClient: &http.Client{Timeout: providerTimeout},
		authURL:    googleoauth.Endpoint.AuthURL,
		tokenURL:   googleoauth.Endpoint.TokenURL,
		scopes:     scopes,
	}
}

// ConsentState is the payload round-tripped through the consent
// redirect's state parameter.
type ConsentState struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// EncodeConsentState serializes the state payload.
func EncodeConsentState(s ConsentState) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	return string(data), nil
}

// DecodeConsentState parses the state payload. A parse failure is
// InvalidState; no defaults are substituted.
func DecodeConsentState(raw string) (*ConsentState, error) {
	var s ConsentState
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, &FlowError{
			Kind:    KindInvalidState,
			Message: "state parameter is not valid JSON",
			Err:     err,
		}
	}
	return &s, nil
}

// BuildConsentURL builds the Google consent URL for the given OAuth
// client credentials. Offline access and forced consent are always
// requested; without them Google may silently omit the refresh token
// on repeat authorizations.
func (c *OAuthClient) BuildConsentURL(clientID, clientSecret, baseURL string) (string, error) {
	if clientID == "" || clientSecret == "" {
		return "", newError(KindMissingCredentials, "OAuth client ID and secret are required")
	}

	state, err := EncodeConsentState(ConsentState{ClientID: clientID, ClientSecret: clientSecret})
	if err != nil {
		return "", err
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + CallbackPath,
		Scopes:       c.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authURL,
			TokenURL: c.tokenURL,
		},
	}

	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// TokenGrant is a successful token endpoint response.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode trades an authorization code for tokens. The provider's
// error body is attached on failure.
func (c *OAuthClient) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*TokenGrant, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	}

	body, status, err := c.postToken(ctx, form)
	if err != nil {
		if isTimeout(err) {
			return nil, &FlowError{Kind: KindNetworkTimeout, Message: "token endpoint timed out", Err: err}
		}
		return nil, &FlowError{Kind: KindTokenExchangeFailed, Message: "token endpoint unreachable", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &FlowError{
			Kind:    KindTokenExchangeFailed,
			Message: fmt.Sprintf("token endpoint returned status %d", status),
			Detail:  string(body),
		}
	}

	var grant TokenGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, &FlowError{
			Kind:    KindTokenExchangeFailed,
			Message: "token endpoint returned malformed JSON",
			Detail:  string(body),
			Err:     err,
		}
	}

	if grant.AccessToken == "" && grant.RefreshToken == "" {
		return nil, &FlowError{
			Kind:    KindNoTokensReturned,
			Message: "token endpoint returned neither an access token nor a refresh token",
			Detail:  string(body),
		}
	}

	return &grant, nil
}

// Refresh mints a new access token from a refresh token. It never
// persists anything; the caller decides whether to write the rotated
// token through.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken, clientID, clientSecret string) (*TokenGrant, error) {
	if refreshToken == "" || clientID == "" || clientSecret == "" {
		return nil, newError(KindMissingRefreshInputs, "refresh token and OAuth client credentials are all required")
	}

	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	body, status, err := c.postToken(ctx, form)
	if err != nil {
		if isTimeout(err) {
			return nil, &FlowError{Kind: KindNetworkTimeout, Message: "token endpoint timed out", Err: err}
		}
		return nil, &FlowError{Kind: KindRefreshFailed, Message: "token endpoint unreachable", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &FlowError{
			Kind:    KindRefreshFailed,
			Message: fmt.Sprintf("token endpoint returned status %d", status),
			Detail:  string(body),
		}
	}

	var grant TokenGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, &FlowError{
			Kind:    KindRefreshFailed,
			Message: "token endpoint returned malformed JSON",
			Detail:  string(body),
			Err:     err,
		}
	}
	if grant.AccessToken == "" {
		return nil, &FlowError{
			Kind:    KindRefreshFailed,
			Message: "token endpoint response contained no access token",
			Detail:  string(body),
		}
	}

	return &grant, nil
}

// postToken performs a form-encoded POST to the token endpoint and
// returns the raw response body and status.
func (c *OAuthClient) postToken(ctx context.Context, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read token response: %w", err)
	}

	return body, resp.StatusCode, nil
}
