package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// DefaultRedirectURI is the local callback address used when the caller does
// not supply a redirect URI of its own.
const DefaultRedirectURI = "http://localhost:8170/oauth2callback"

// Factory produces OAuth2 client configurations bound to the application keys.
// It is a stateless, pure factory: no network or disk I/O happens at
// construction time.
type Factory struct {
	base *oauth2.Config
}

// NewFactory creates a factory around the application keys loaded by LoadKeys.
func NewFactory(base *oauth2.Config) *Factory {
	return &Factory{base: base}
}

// Config returns a fresh OAuth2 configuration bound to redirectURI.
// An empty redirectURI selects DefaultRedirectURI.
func (f *Factory) Config(redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	conf := *f.base
	conf.RedirectURL = redirectURI
	conf.Scopes = append([]string(nil), f.base.Scopes...)
	return &conf
}

// AuthURL builds the authorization URL for the consent flow. Offline access
// and a forced consent prompt are requested so the provider always returns a
// refresh token. The result is deterministic for a given set of application
// keys, redirect URI and state.
func (f *Factory) AuthURL(state, redirectURI string) string {
	return f.Config(redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for a credential bundle at the
// provider's token endpoint. A rejected or expired code surfaces as an error;
// callers must not proceed without tokens.
func (f *Factory) Exchange(ctx context.Context, code, redirectURI string) (*Credentials, error) {
	token, err := f.Config(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return CredentialsFromToken(token), nil
}
