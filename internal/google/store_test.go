package google

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/config"
	"github.com/zcanzcan/tong2-portfolio-sub000/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStoreLoadEmpty(t *testing.T) {
	store := newTestStore(t)

	creds, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *creds != (Credentials{}) {
		t.Fatalf("expected empty credentials, got %+v", creds)
	}
}

func TestStoreSaveMergesPatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, &CredentialsPatch{
		CalendarID:        String("cal@example.com"),
		APIKey:            String("key-1"),
		OAuthClientID:     String("client-1"),
		OAuthClientSecret: String("secret-1"),
	})
	if err != nil {
		t.Fatalf("initial save failed: %v", err)
	}

	// A partial patch must leave unmentioned fields untouched.
	err = store.Save(ctx, &CredentialsPatch{
		AccessToken:  String("at-1"),
		RefreshToken: String("rt-1"),
	})
	if err != nil {
		t.Fatalf("partial save failed: %v", err)
	}

	creds, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.CalendarID != "cal@example.com" || creds.APIKey != "key-1" {
		t.Fatalf("partial save clobbered existing fields: %+v", creds)
	}
	if creds.AccessToken != "at-1" || creds.RefreshToken != "rt-1" {
		t.Fatalf("patch fields not applied: %+v", creds)
	}
}

func TestStoreSaveClearsWithEmptyString(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, &CredentialsPatch{APIKey: String("key-1")}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// An explicit empty string clears the field; an absent pointer
	// leaves it alone.
	if err := store.Save(ctx, &CredentialsPatch{APIKey: String("")}); err != nil {
		t.Fatalf("clearing save failed: %v", err)
	}

	creds, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.APIKey != "" {
		t.Fatalf("expected cleared API key, got %q", creds.APIKey)
	}
}

func TestStoreSaveNilPatch(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("nil patch must be a no-op, got %v", err)
	}
}

func TestCredentialsResolved(t *testing.T) {
	// Database values win over environment fallbacks field by field.
	stored := &Credentials{CalendarID: "db-cal", AccessToken: "at"}
	env := &config.GoogleConfig{
		CalendarID:   "env-cal",
		APIKey:       "env-key",
		ClientID:     "env-client",
		ClientSecret: "env-secret",
	}

	resolved := stored.Resolved(env)
	if resolved.CalendarID != "db-cal" {
		t.Fatalf("expected stored calendar ID, got %q", resolved.CalendarID)
	}
	if resolved.APIKey != "env-key" {
		t.Fatalf("expected env API key fallback, got %q", resolved.APIKey)
	}
	if resolved.OAuthClientID != "env-client" || resolved.OAuthClientSecret != "env-secret" {
		t.Fatalf("expected env OAuth fallback, got %+v", resolved)
	}
	if resolved.AccessToken != "at" {
		t.Fatalf("tokens must come from storage only, got %q", resolved.AccessToken)
	}
	// The receiver is not mutated.
	if stored.APIKey != "" {
		t.Fatalf("Resolved must not mutate the stored record")
	}
}
