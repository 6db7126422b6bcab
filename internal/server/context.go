package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/mailfold/internal/auth"
	"github.com/teemow/mailfold/internal/gmail"
	"github.com/teemow/mailfold/internal/instrumentation"
)

// ServerContext holds the context for the MCP server.
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	manager      *auth.Manager
	gmailClients map[string]*gmail.Client // keyed by account ID
	metrics      *instrumentation.Metrics
	readOnly     bool
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context around the account manager.
func NewServerContext(ctx context.Context, manager *auth.Manager) (*ServerContext, error) {
	if manager == nil {
		return nil, fmt.Errorf("account manager is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		manager:      manager,
		gmailClients: make(map[string]*gmail.Client),
		metrics:      &instrumentation.Metrics{},
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Manager returns the account manager.
func (sc *ServerContext) Manager() *auth.Manager {
	return sc.manager
}

// SetMetrics installs the metrics recorder. A nil recorder is ignored; the
// zero-value recorder set at construction time is already a safe no-op.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	if m == nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder. Never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetReadOnly toggles read-only mode for tool registration.
func (sc *ServerContext) SetReadOnly(readOnly bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.readOnly = readOnly
}

// ReadOnly reports whether the server runs with mutating tools disabled.
func (sc *ServerContext) ReadOnly() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.readOnly
}

// GmailClient resolves the account (empty means the default account) and
// returns a Gmail client for it, building and caching one on first use.
// The second return value is the resolved account ID.
func (sc *ServerContext) GmailClient(ctx context.Context, account string) (*gmail.Client, string, error) {
	authClient, resolved, err := sc.manager.Resolve(ctx, account)
	if err != nil {
		return nil, "", err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.gmailClients[resolved]; ok {
		return client, resolved, nil
	}

	client, err := gmail.NewClient(sc.ctx, authClient)
	if err != nil {
		return nil, resolved, fmt.Errorf("failed to create Gmail client for account %s: %w", resolved, err)
	}

	sc.gmailClients[resolved] = client
	return client, resolved, nil
}

// ForgetGmailClient drops the cached Gmail client for an account. Called
// after the account is removed so a later re-add starts fresh.
func (sc *ServerContext) ForgetGmailClient(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.gmailClients, account)
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
