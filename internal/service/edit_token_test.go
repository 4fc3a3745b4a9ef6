package service

import (
	"errors"
	"testing"
	"time"
)

func TestEditTokenRoundTrip(t *testing.T) {
	tokens := NewEditTokens("secret", time.Hour)

	raw, err := tokens.Issue("coffee-shop", 1)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := tokens.Verify(raw, "coffee-shop", 1); err != nil {
		t.Fatalf("expected token to verify: %v", err)
	}
}

func TestEditTokenRejections(t *testing.T) {
	tokens := NewEditTokens("secret", time.Hour)
	raw, err := tokens.Issue("coffee-shop", 2)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	cases := map[string]func() error{
		"other slug":    func() error { return tokens.Verify(raw, "tea-shop", 2) },
		"stale version": func() error { return tokens.Verify(raw, "coffee-shop", 3) },
		"empty":         func() error { return tokens.Verify("", "coffee-shop", 2) },
		"garbage":       func() error { return tokens.Verify("not-a-jwt", "coffee-shop", 2) },
		"other secret":  func() error { return NewEditTokens("different", time.Hour).Verify(raw, "coffee-shop", 2) },
	}
	for name, verify := range cases {
		if err := verify(); !errors.Is(err, ErrInvalidEditToken) {
			t.Errorf("%s: expected ErrInvalidEditToken, got %v", name, err)
		}
	}
}

func TestEditTokenExpires(t *testing.T) {
	tokens := NewEditTokens("secret", time.Minute)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue("menu", 1)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if err := tokens.Verify(raw, "menu", 1); !errors.Is(err, ErrInvalidEditToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}
