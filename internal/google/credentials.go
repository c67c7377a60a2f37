// Package google implements the Google Calendar OAuth token lifecycle
// and event read/write clients.
package google

import (
	"strings"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
)

const (
	// syntheticIDPrefix marks calendar identifiers issued without an
	// email-style domain.
	syntheticIDPrefix = "gen-lang-client"

	groupCalendarDomain = "group.calendar.google.com"
)

// Credentials is the singleton calendar credential record. An empty
// string means the field is absent.
type Credentials struct {
	CalendarID        string `json:"calendarId"`
	APIKey            string `json:"apiKey"`
	OAuthClientID     string `json:"oauthClientId"`
	OAuthClientSecret string `json:"oauthClientSecret"`
	AccessToken       string `json:"accessToken"`
	RefreshToken      string `json:"refreshToken"`
}

// CanRefresh reports whether the record carries everything needed to
// mint a new access token without user interaction.
func (c *Credentials) CanRefresh() bool {
	return c.RefreshToken != "" && c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// HasOAuthClient reports whether OAuth application credentials are set.
func (c *Credentials) HasOAuthClient() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// CredentialsPatch is a merge-patch update: nil fields leave the stored
// value untouched, non-nil fields overwrite it.
type CredentialsPatch struct {
	CalendarID        *string `json:"calendarId"`
	APIKey            *string `json:"apiKey"`
	OAuthClientID     *string `json:"oauthClientId"`
	OAuthClientSecret *string `json:"oauthClientSecret"`
	AccessToken       *string `json:"accessToken"`
	RefreshToken      *string `json:"refreshToken"`
}

// apply merges the patch into c.
func (p *CredentialsPatch) apply(c *Credentials) {
	if p.CalendarID != nil {
		c.CalendarID = *p.CalendarID
	}
	if p.APIKey != nil {
		c.APIKey = *p.APIKey
	}
	if p.OAuthClientID != nil {
		c.OAuthClientID = *p.OAuthClientID
	}
	if p.OAuthClientSecret != nil {
		c.OAuthClientSecret = *p.OAuthClientSecret
	}
	if p.AccessToken != nil {
		c.AccessToken = *p.AccessToken
	}
	if p.RefreshToken != nil {
		c.RefreshToken = *p.RefreshToken
	}
}

// String returns a pointer to v, for building patches.
func String(v string) *string {
	return &v
}

// NormalizeCalendarID appends the group-calendar domain to synthetic
// calendar identifiers that lack an email-style domain.
func NormalizeCalendarID(id string) string {
	if id == "" || strings.Contains(id, "@") {
		return id
	}
	if strings.HasPrefix(id, syntheticIDPrefix) {
		return id + "@" + groupCalendarDomain
	}
	return id
}

// Resolve picks between an admin-entered database value and an
// environment fallback. The database value wins when present.
func Resolve(dbValue, envValue string) string {
	if dbValue != "" {
		return dbValue
	}
	return envValue
}

// Resolved returns a copy of c with environment fallbacks applied per
// field. Every component reading credentials goes through this.
func (c *Credentials) Resolved(env *config.GoogleConfig) *Credentials {
	return &Credentials{
		CalendarID:        Resolve(c.CalendarID, env.CalendarID),
		APIKey:            Resolve(c.APIKey, env.APIKey),
		OAuthClientID:     Resolve(c.OAuthClientID, env.ClientID),
		OAuthClientSecret: Resolve(c.OAuthClientSecret, env.ClientSecret),
		AccessToken:       c.AccessToken,
		RefreshToken:      c.RefreshToken,
	}
}
