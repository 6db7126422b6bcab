package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/teemow/mailfold/internal/logging"
)

// AccountInfo is the registry metadata for one account. Email comes from the
// provider identity lookup and may be the sentinel UnknownEmail when lookup
// failed during registration.
type AccountInfo struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

// Metadata is the registry root document: account identifiers mapped to their
// metadata plus an optional pointer to the default account. When
// DefaultAccount is set it always references an existing key in Accounts;
// mutating methods maintain that invariant.
type Metadata struct {
	Accounts       map[string]*AccountInfo `json:"accounts"`
	DefaultAccount string                  `json:"defaultAccount,omitempty"`
}

// Registry owns the single accounts.json document. Every mutating method
// persists synchronously, so registry state never lags an operation.
//
// Registry itself does not lock; the Manager serializes access to it.
type Registry struct {
	path   string
	logger *slog.Logger
	meta   Metadata
}

// NewRegistry creates a registry backed by the document at path.
func NewRegistry(path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		path:   path,
		logger: logger,
		meta:   Metadata{Accounts: make(map[string]*AccountInfo)},
	}
}

// Load reads the registry document. An absent file and an unparseable file
// are both treated as "start from an empty registry": a corrupted registry
// must never block startup. Corruption is logged as a recoverable anomaly,
// which does mean the corrupted file's contents are discarded on the next
// save.
func (r *Registry) Load() error {
	r.meta = Metadata{Accounts: make(map[string]*AccountInfo)}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("failed to read account registry, starting empty",
				logging.Path(r.path), logging.Err(err))
		}
		return nil
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		r.logger.Warn("account registry is unparseable, starting empty",
			logging.Path(r.path), logging.Err(err))
		return nil
	}

	if meta.Accounts == nil {
		meta.Accounts = make(map[string]*AccountInfo)
	}
	r.meta = meta
	return nil
}

// Save serializes and writes the full document, pretty-printed.
func (r *Registry) Save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(&r.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode account registry: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write account registry: %w", err)
	}
	return nil
}

// Get returns the metadata for an account.
func (r *Registry) Get(accountID string) (*AccountInfo, bool) {
	info, ok := r.meta.Accounts[accountID]
	if !ok {
		return nil, false
	}
	copied := *info
	return &copied, true
}

// Len returns the number of registered accounts.
func (r *Registry) Len() int {
	return len(r.meta.Accounts)
}

// List returns a copy of the full account mapping.
func (r *Registry) List() map[string]AccountInfo {
	out := make(map[string]AccountInfo, len(r.meta.Accounts))
	for id, info := range r.meta.Accounts {
		out[id] = *info
	}
	return out
}

// Default returns the configured default account identifier, if set.
func (r *Registry) Default() (string, bool) {
	if r.meta.DefaultAccount == "" {
		return "", false
	}
	return r.meta.DefaultAccount, true
}

// ResolveDefault returns the configured default if set, else the first
// account in the mapping by iteration order, else false when no accounts
// exist.
func (r *Registry) ResolveDefault() (string, bool) {
	if r.meta.DefaultAccount != "" {
		return r.meta.DefaultAccount, true
	}
	for id := range r.meta.Accounts {
		return id, true
	}
	return "", false
}

// SetDefault updates the default account pointer. It returns false without
// persisting when the identifier is not registered.
func (r *Registry) SetDefault(accountID string) (bool, error) {
	if _, ok := r.meta.Accounts[accountID]; !ok {
		return false, nil
	}
	r.meta.DefaultAccount = accountID
	return true, r.Save()
}

// Upsert inserts or replaces the metadata for an account and persists.
func (r *Registry) Upsert(accountID string, info *AccountInfo) error {
	copied := *info
	r.meta.Accounts[accountID] = &copied
	return r.Save()
}

// Remove deletes an account from the registry and persists. When the removed
// account was the default, the default pointer is reassigned to an arbitrary
// remaining account, or cleared when none remain, preserving the invariant
// that a set default always references an existing key.
func (r *Registry) Remove(accountID string) (bool, error) {
	if _, ok := r.meta.Accounts[accountID]; !ok {
		return false, nil
	}
	delete(r.meta.Accounts, accountID)

	if r.meta.DefaultAccount == accountID {
		r.meta.DefaultAccount = ""
		for id := range r.meta.Accounts {
			r.meta.DefaultAccount = id
			break
		}
	}
	return true, r.Save()
}

// Touch updates an account's lastUsed timestamp and persists. Touching an
// unknown account is a no-op.
func (r *Registry) Touch(accountID string) error {
	info, ok := r.meta.Accounts[accountID]
	if !ok {
		return nil
	}
	info.LastUsed = time.Now().UTC()
	return r.Save()
}
