package google

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
)

// Store persists the singleton Credentials record. Column names use
// the flattened snake_case convention; the mapping to the in-process
// camelCase names is a pure renaming.
type Store struct {
	db *database.DB
}

// NewStore creates a credentials store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Load returns the stored credentials, or an empty record when none
// have been saved yet.
func (s *Store) Load(ctx context.Context) (*Credentials, error) {
	var c Credentials
	err := s.db.QueryRowContext(ctx, `
		SELECT calendar_id, api_key, oauth_client_id, oauth_client_secret,
		       access_token, refresh_token
		FROM calendar_credentials
		WHERE id = 'primary'
	`).Scan(&c.CalendarID, &c.APIKey, &c.OAuthClientID, &c.OAuthClientSecret,
		&c.AccessToken, &c.RefreshToken)

	if err == sql.ErrNoRows {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar credentials: %w", err)
	}

	return &c, nil
}

// Save merges the patch into the stored record and persists the result.
// Writes are last-writer-wins; there is no optimistic concurrency
// control, which the single-administrator usage model tolerates.
func (s *Store) Save(ctx context.Context, patch *CredentialsPatch) error {
	if patch == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current Credentials
	err = tx.QueryRowContext(ctx, `
		SELECT calendar_id, api_key, oauth_client_id, oauth_client_secret,
		       access_token, refresh_token
		FROM calendar_credentials
		WHERE id = 'primary'
	`).Scan(&current.CalendarID, &current.APIKey, &current.OAuthClientID,
		&current.OAuthClientSecret, &current.AccessToken, &current.RefreshToken)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to load calendar credentials: %w", err)
	}

	patch.apply(&current)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calendar_credentials (
			id, calendar_id, api_key, oauth_client_id, oauth_client_secret,
			access_token, refresh_token, updated_at
		)
		VALUES ('primary', ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			calendar_id = excluded.calendar_id,
			api_key = excluded.api_key,
			oauth_client_id = excluded.oauth_client_id,
			oauth_client_secret = excluded.oauth_client_secret,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = datetime('now')
	`, current.CalendarID, current.APIKey, current.OAuthClientID,
		current.OAuthClientSecret, current.AccessToken, current.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to save calendar credentials: %w", err)
	}

	return tx.Commit()
}
