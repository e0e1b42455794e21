package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testStore(t *testing.T) *CredentialStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tok, err := s.LoadToken(ctx, "gmail", "user@gmail.com")
	if err != nil {
		t.Fatalf("LoadToken empty: %v", err)
	}
	if tok != nil {
		t.Fatalf("expected nil token, got %+v", tok)
	}

	in := &oauth2.Token{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.SaveToken(ctx, "gmail", "user@gmail.com", in); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	out, err := s.LoadToken(ctx, "gmail", "user@gmail.com")
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if out == nil || out.AccessToken != "at-1" || out.RefreshToken != "rt-1" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if !out.Expiry.Equal(in.Expiry) {
		t.Fatalf("expiry mismatch: %v", out.Expiry)
	}

	// Saving again replaces the previous token.
	in.AccessToken = "at-2"
	if err := s.SaveToken(ctx, "gmail", "user@gmail.com", in); err != nil {
		t.Fatalf("SaveToken update: %v", err)
	}
	out, _ = s.LoadToken(ctx, "gmail", "user@gmail.com")
	if out.AccessToken != "at-2" {
		t.Fatalf("expected at-2, got %q", out.AccessToken)
	}
}

func TestDeleteToken(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.SaveToken(ctx, "gmail", "user@gmail.com", &oauth2.Token{AccessToken: "x"})
	if err := s.DeleteToken(ctx, "gmail", "user@gmail.com"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	tok, err := s.LoadToken(ctx, "gmail", "user@gmail.com")
	if err != nil || tok != nil {
		t.Fatalf("expected nil after delete, got %+v err=%v", tok, err)
	}
	// Deleting again is fine.
	if err := s.DeleteToken(ctx, "gmail", "user@gmail.com"); err != nil {
		t.Fatalf("DeleteToken missing: %v", err)
	}
}

func TestLastLogin(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	marker, err := s.GetLastLogin(ctx)
	if err != nil {
		t.Fatalf("GetLastLogin: %v", err)
	}
	if marker != "" {
		t.Fatalf("expected empty, got %q", marker)
	}

	if err := s.SetLastLogin(ctx, "yahoo user@yahoo.com"); err != nil {
		t.Fatalf("SetLastLogin: %v", err)
	}
	marker, _ = s.GetLastLogin(ctx)
	if marker != "yahoo user@yahoo.com" {
		t.Fatalf("got %q", marker)
	}

	s.SetLastLogin(ctx, "gmail user@gmail.com")
	marker, _ = s.GetLastLogin(ctx)
	if marker != "gmail user@gmail.com" {
		t.Fatalf("got %q", marker)
	}
}
