package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// ErrCredentialsNotFound reports that no credential file exists for an
// account. It is distinct from a read or parse failure of an existing file.
var ErrCredentialsNotFound = errors.New("no stored credentials for account")

// Credentials is the OAuth token bundle persisted for one account, stored
// verbatim as returned by the authorization code exchange. Expiry is never
// interpreted here; the oauth2 TokenSource owns refresh decisions.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	// ExpiryDate is epoch milliseconds, absent when the provider returned
	// no expiry.
	ExpiryDate *int64 `json:"expiry_date,omitempty"`
}

// CredentialsFromToken converts an oauth2 token into the persisted form.
func CredentialsFromToken(t *oauth2.Token) *Credentials {
	creds := &Credentials{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if scope, ok := t.Extra("scope").(string); ok {
		creds.Scope = scope
	}
	if !t.Expiry.IsZero() {
		millis := t.Expiry.UnixMilli()
		creds.ExpiryDate = &millis
	}
	return creds
}

// Token converts stored credentials back into an oauth2 token suitable for
// seeding a TokenSource.
func (c *Credentials) Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
	}
	if c.ExpiryDate != nil {
		token.Expiry = time.UnixMilli(*c.ExpiryDate)
	}
	return token
}

// CredentialStore maps account identifiers to persisted credential files,
// one JSON document per account. Per-account file isolation means a crash
// mid-write can never corrupt another account's credentials.
type CredentialStore struct {
	dir string
}

// NewCredentialStore creates a store rooted at dir.
func NewCredentialStore(dir string) *CredentialStore {
	return &CredentialStore{dir: dir}
}

func (s *CredentialStore) path(accountID string) string {
	return filepath.Join(s.dir, accountID+".json")
}

// Load reads the credential file for an account. A missing file returns
// ErrCredentialsNotFound; an unreadable or malformed file returns a wrapped
// read/parse error so callers can tell the two apart.
func (s *CredentialStore) Load(accountID string) (*Credentials, error) {
	data, err := os.ReadFile(s.path(accountID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to read credentials for account %s: %w", accountID, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials for account %s: %w", accountID, err)
	}
	return &creds, nil
}

// Save writes (or overwrites) the credential file for an account.
func (s *CredentialStore) Save(accountID string, creds *Credentials) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials for account %s: %w", accountID, err)
	}

	if err := os.WriteFile(s.path(accountID), data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials for account %s: %w", accountID, err)
	}
	return nil
}

// Delete removes the credential file for an account. Deleting a nonexistent
// file is not an error.
func (s *CredentialStore) Delete(accountID string) error {
	if err := os.Remove(s.path(accountID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials for account %s: %w", accountID, err)
	}
	return nil
}
