package crypto

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}

	if !VerifyPassword("correct horse battery", hash) {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword("wrong password!", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestGenerateIDFormat(t *testing.T) {
	id, err := GenerateID("prj")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if !strings.HasPrefix(id, "prj_") {
		t.Fatalf("unexpected prefix: %q", id)
	}
	if len(id) != len("prj_")+16 {
		t.Fatalf("unexpected length: %q", id)
	}

	other, err := GenerateID("prj")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id == other {
		t.Fatal("expected unique IDs")
	}
}
