package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/mailfold/internal/instrumentation"
	"github.com/teemow/mailfold/internal/logging"
)

// Typed failures of the account resolution boundary. Callers emit different
// guidance for the two, so they must stay distinct.
var (
	// ErrNoAccount reports that no account identifier was supplied and no
	// account is registered to fall back to.
	ErrNoAccount = errors.New("no account available, authenticate one first")

	// ErrCredentialsMissing reports that an account is known but its stored
	// credentials are missing or unreadable.
	ErrCredentialsMissing = errors.New("account credentials missing or invalid")
)

// Client is an authenticated handle for one account. The embedded token
// source refreshes the access token transparently; refreshed tokens are not
// written back to disk.
type Client struct {
	accountID string
	source    oauth2.TokenSource
	http      *http.Client
}

// AccountID returns the account identifier this client is bound to.
func (c *Client) AccountID() string {
	return c.accountID
}

// HTTPClient returns the authenticated HTTP client for provider API calls.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Token returns a live token, refreshing through the token source if needed.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.source.Token()
}

// Manager composes the credential store, the OAuth client factory and the
// account registry, and owns the in-memory client cache. One Manager is
// constructed per process and handed to every request handler; it is safe for
// concurrent use.
type Manager struct {
	factory  *Factory
	store    *CredentialStore
	registry *Registry
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	metrics *instrumentation.Metrics

	// Endpoint overrides for identity lookup, used by tests.
	userinfoEndpoint string
	gmailEndpoint    string
}

// NewManager builds a manager from its three collaborators and loads the
// registry into memory. Registry corruption is recovered as an empty registry,
// so construction only reflects that lenient load.
func NewManager(factory *Factory, store *CredentialStore, registry *Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		factory:  factory,
		store:    store,
		registry: registry,
		logger:   logger,
		clients:  make(map[string]*Client),
		metrics:  &instrumentation.Metrics{},
	}
	if err := registry.Load(); err != nil {
		// Load is lenient by design; an error here is unexpected.
		logger.Warn("account registry load failed", logging.Err(err))
	}
	return m
}

// NewManagerFromKeys is the common construction path: application keys plus
// the default on-disk layout under the config directory.
func NewManagerFromKeys(keys *oauth2.Config, logger *slog.Logger) *Manager {
	factory := NewFactory(keys)
	store := NewCredentialStore(CredentialsDir())
	registry := NewRegistry(RegistryPath(), logger)
	return NewManager(factory, store, registry, logger)
}

// SetMetrics installs the metrics recorder. A nil recorder is ignored; the
// zero-value recorder set at construction time is already a safe no-op.
func (m *Manager) SetMetrics(rec *instrumentation.Metrics) {
	if rec == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = rec
}

// recorder returns the metrics recorder. Callers must not hold m.mu.
func (m *Manager) recorder() *instrumentation.Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// newClient constructs an authenticated client from stored credentials.
func (m *Manager) newClient(ctx context.Context, accountID string, creds *Credentials) *Client {
	conf := m.factory.Config("")
	source := conf.TokenSource(ctx, creds.Token())
	return &Client{
		accountID: accountID,
		source:    source,
		http:      oauth2.NewClient(ctx, source),
	}
}

// Client returns the authenticated client for an account, materializing and
// caching it from the credential store on first use. It returns nil when the
// account has no usable credentials; callers must treat nil as "account not
// usable", not as a crash.
func (m *Manager) Client(ctx context.Context, accountID string) *Client {
	m.mu.RLock()
	client, ok := m.clients[accountID]
	m.mu.RUnlock()
	if ok {
		return client
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientLocked(ctx, accountID)
}

// clientLocked is Client without locking; callers hold m.mu.
func (m *Manager) clientLocked(ctx context.Context, accountID string) *Client {
	if client, ok := m.clients[accountID]; ok {
		return client
	}

	creds, err := m.store.Load(accountID)
	if err != nil {
		if errors.Is(err, ErrCredentialsNotFound) {
			m.logger.Debug("no credentials for account", logging.Account(accountID))
		} else {
			m.logger.Warn("failed to load credentials for account",
				logging.Account(accountID), logging.Err(err))
		}
		return nil
	}

	client := m.newClient(ctx, accountID, creds)
	m.clients[accountID] = client
	return client
}

// Resolve is the canonical entry point for every mail operation: it maps an
// optional account identifier to an authenticated client and the identifier
// that was actually used. An empty accountID selects the default account.
//
// ErrNoAccount and ErrCredentialsMissing are kept distinct so callers can
// tell "nothing configured" from "configured but unusable". Every successful
// resolution refreshes the account's lastUsed timestamp.
func (m *Manager) Resolve(ctx context.Context, accountID string) (*Client, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	explicit := accountID != ""

	resolved := accountID
	if resolved == "" {
		var ok bool
		resolved, ok = m.registry.ResolveDefault()
		if !ok {
			m.metrics.RecordAccountResolution(ctx, instrumentation.ResultNoAccount, explicit)
			return nil, "", ErrNoAccount
		}
	}

	client := m.clientLocked(ctx, resolved)
	if client == nil {
		m.metrics.RecordAccountResolution(ctx, instrumentation.ResultCredentialsMissing, explicit)
		return nil, "", fmt.Errorf("%w: %s", ErrCredentialsMissing, resolved)
	}

	if err := m.registry.Touch(resolved); err != nil {
		m.logger.Warn("failed to record account use",
			logging.Account(resolved), logging.Err(err))
	}
	m.metrics.RecordAccountResolution(ctx, instrumentation.ResultSuccess, explicit)
	return client, resolved, nil
}

// AddAccount persists credentials, registers metadata with fresh timestamps,
// promotes the account to default when the registry was previously empty, and
// pre-populates the client cache so the first mail operation needs no disk
// read.
func (m *Manager) AddAccount(ctx context.Context, accountID, name, tag string, creds *Credentials, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(accountID, creds); err != nil {
		return err
	}

	wasEmpty := m.registry.Len() == 0
	now := time.Now().UTC()
	info := &AccountInfo{
		Email:     email,
		Name:      name,
		Tag:       tag,
		CreatedAt: now,
		LastUsed:  now,
	}
	if err := m.registry.Upsert(accountID, info); err != nil {
		return err
	}
	if wasEmpty {
		if _, err := m.registry.SetDefault(accountID); err != nil {
			return err
		}
	}

	m.clients[accountID] = m.newClient(ctx, accountID, creds)
	m.logger.Info("account added",
		logging.Account(accountID), logging.UserHash(email))
	return nil
}

// RemoveAccount deletes the credential file, drops the registry entry
// (repairing the default pointer) and purges the client cache. All three
// steps run even when one of them is a no-op. It returns false when the
// account is unknown.
func (m *Manager) RemoveAccount(accountID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registry.Get(accountID); !ok {
		return false
	}

	if err := m.store.Delete(accountID); err != nil {
		m.logger.Warn("failed to delete credentials",
			logging.Account(accountID), logging.Err(err))
	}
	if _, err := m.registry.Remove(accountID); err != nil {
		m.logger.Warn("failed to update registry",
			logging.Account(accountID), logging.Err(err))
	}
	delete(m.clients, accountID)

	m.logger.Info("account removed", logging.Account(accountID))
	return true
}

// UpdateOptions carries the mutable metadata fields of an account. Nil fields
// are left untouched.
type UpdateOptions struct {
	Name *string
	Tag  *string
}

// UpdateAccount merges the provided fields into existing metadata and
// refreshes lastUsed. It returns false when the account is unknown.
func (m *Manager) UpdateAccount(accountID string, opts UpdateOptions) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.registry.Get(accountID)
	if !ok {
		return false
	}

	if opts.Name != nil {
		info.Name = *opts.Name
	}
	if opts.Tag != nil {
		info.Tag = *opts.Tag
	}
	info.LastUsed = time.Now().UTC()

	if err := m.registry.Upsert(accountID, info); err != nil {
		m.logger.Warn("failed to update account",
			logging.Account(accountID), logging.Err(err))
		return false
	}
	return true
}

// SetDefaultAccount updates the default account pointer. It returns false
// when the identifier is not registered.
func (m *Manager) SetDefaultAccount(accountID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ok, err := m.registry.SetDefault(accountID)
	if err != nil {
		m.logger.Warn("failed to persist default account",
			logging.Account(accountID), logging.Err(err))
		return false
	}
	return ok
}

// AccountSummary is one entry of the materialized account list.
type AccountSummary struct {
	ID      string
	Info    AccountInfo
	Default bool
}

// ListAccounts returns the fully materialized account list, sorted by
// identifier. Registries are small (tens of accounts); there is no
// pagination.
func (m *Manager) ListAccounts() []AccountSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defaultID, _ := m.registry.Default()
	accounts := m.registry.List()

	out := make([]AccountSummary, 0, len(accounts))
	for id, info := range accounts {
		out = append(out, AccountSummary{
			ID:      id,
			Info:    info,
			Default: id == defaultID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultAccount returns the configured default account identifier, if any.
func (m *Manager) DefaultAccount() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry.Default()
}

// ValidateAccount checks that an account's stored credentials still yield a
// usable token. It forces a fetch through the token source, which refreshes
// an expired access token when a refresh token is present.
func (m *Manager) ValidateAccount(ctx context.Context, accountID string) error {
	client := m.Client(ctx, accountID)
	if client == nil {
		return fmt.Errorf("%w: %s", ErrCredentialsMissing, accountID)
	}
	if _, err := client.Token(); err != nil {
		return fmt.Errorf("token for account %s is not usable: %w", accountID, err)
	}
	return nil
}

// AuthURL builds the authorization URL for adding a new account.
func (m *Manager) AuthURL(state, redirectURI string) string {
	return m.factory.AuthURL(state, redirectURI)
}

// CompleteAuth finishes the authorization-code flow for a new account:
// exchange the code for tokens, discover the account's email address and
// register everything. The exchange error propagates (registration cannot
// proceed without tokens), while identity lookup degrades to a sentinel and
// never aborts registration. The discovered email is returned.
func (m *Manager) CompleteAuth(ctx context.Context, accountID, name, tag, code, redirectURI string) (string, error) {
	creds, err := m.factory.Exchange(ctx, code, redirectURI)
	if err != nil {
		m.recorder().RecordOAuthExchange(ctx, instrumentation.ResultError)
		return "", err
	}
	m.recorder().RecordOAuthExchange(ctx, instrumentation.ResultSuccess)

	client := m.newClient(ctx, accountID, creds)
	email := m.LookupIdentity(ctx, client)

	if err := m.AddAccount(ctx, accountID, name, tag, creds, email); err != nil {
		return "", err
	}
	return email, nil
}
