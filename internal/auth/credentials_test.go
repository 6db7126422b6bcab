package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestCredentialStore_LoadMissing(t *testing.T) {
	s := NewCredentialStore(t.TempDir())

	_, err := s.Load("ghost")
	if !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestCredentialStore_LoadMalformed(t *testing.T) {
	dir := t.TempDir()
	s := NewCredentialStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load("bad")
	if err == nil {
		t.Fatal("expected error for malformed credentials")
	}
	// A malformed file is not the same failure as a missing one.
	if errors.Is(err, ErrCredentialsNotFound) {
		t.Error("malformed credentials must not report ErrCredentialsNotFound")
	}
}

func TestCredentialStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewCredentialStore(filepath.Join(t.TempDir(), "accounts"))

	expiry := time.Now().Add(time.Hour).UnixMilli()
	in := &Credentials{
		AccessToken:  "at",
		RefreshToken: "rt",
		Scope:        "scope-a scope-b",
		TokenType:    "Bearer",
		ExpiryDate:   &expiry,
	}

	if err := s.Save("work", in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := s.Load("work")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.AccessToken != in.AccessToken || out.RefreshToken != in.RefreshToken {
		t.Errorf("tokens changed across round trip: %+v", out)
	}
	if out.ExpiryDate == nil || *out.ExpiryDate != expiry {
		t.Errorf("expiry changed across round trip: %v", out.ExpiryDate)
	}
}

func TestCredentialStore_FilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "accounts")
	s := NewCredentialStore(dir)

	if err := s.Save("work", &Credentials{AccessToken: "at"}); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(filepath.Join(dir, "work.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := fi.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file permissions = %o, want 600", perm)
	}
}

func TestCredentialStore_DeleteAbsent(t *testing.T) {
	s := NewCredentialStore(t.TempDir())
	if err := s.Delete("ghost"); err != nil {
		t.Errorf("Delete of absent credentials should succeed, got %v", err)
	}
}

func TestCredentialsFromToken(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute)
	token := (&oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}).WithExtra(map[string]interface{}{"scope": "a b"})

	creds := CredentialsFromToken(token)
	if creds.AccessToken != "at" || creds.RefreshToken != "rt" || creds.TokenType != "Bearer" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if creds.Scope != "a b" {
		t.Errorf("scope not captured from token extras: %q", creds.Scope)
	}
	if creds.ExpiryDate == nil || *creds.ExpiryDate != expiry.UnixMilli() {
		t.Errorf("expiry not converted to epoch millis: %v", creds.ExpiryDate)
	}
}

func TestCredentialsFromToken_NoExpiry(t *testing.T) {
	creds := CredentialsFromToken(&oauth2.Token{AccessToken: "at"})
	if creds.ExpiryDate != nil {
		t.Errorf("expected absent expiry, got %v", *creds.ExpiryDate)
	}

	// Converting back yields a token with zero expiry, which the oauth2
	// package treats as non-expiring.
	if !creds.Token().Expiry.IsZero() {
		t.Error("expected zero expiry on converted token")
	}
}

func TestCredentials_TokenRoundTrip(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	millis := expiry.UnixMilli()
	creds := &Credentials{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		ExpiryDate:   &millis,
	}

	token := creds.Token()
	if token.AccessToken != "at" || token.RefreshToken != "rt" {
		t.Errorf("unexpected token: %+v", token)
	}
	if !token.Expiry.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", token.Expiry, expiry)
	}
}
