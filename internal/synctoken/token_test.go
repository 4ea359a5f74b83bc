package synctoken

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := Hash("a-long-enough-shared-secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}

	if err := Check(hash, "a-long-enough-shared-secret"); err != nil {
		t.Errorf("expected token to match, got %v", err)
	}
	if err := Check(hash, "wrong"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if err := Check(hash, ""); !errors.Is(err, ErrTokenRequired) {
		t.Errorf("expected ErrTokenRequired, got %v", err)
	}
}

func TestCheckWithoutHashIsOpen(t *testing.T) {
	if err := Check("  ", "anything"); err != nil {
		t.Errorf("expected open endpoint, got %v", err)
	}
}

func TestHashRejectsShortTokens(t *testing.T) {
	if _, err := Hash(""); !errors.Is(err, ErrTokenRequired) {
		t.Errorf("expected ErrTokenRequired, got %v", err)
	}
	if _, err := Hash("short"); err == nil {
		t.Error("expected short token to be rejected")
	}
}

func TestGenerate(t *testing.T) {
	first, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, _ := Generate()
	if len(first) != 64 || first == second {
		t.Errorf("expected distinct 64-char tokens, got %q and %q", first, second)
	}
}
