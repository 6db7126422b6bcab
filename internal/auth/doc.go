// Package auth implements multi-account Google OAuth credential management.
//
// It owns the on-disk account registry (accounts.json), the per-account
// credential files under accounts/, and the construction of authenticated
// OAuth2 clients from stored tokens. The Manager is the only type other
// subsystems interact with: mail tools resolve accounts through it, and the
// CLI drives the account lifecycle (add/remove/update/list/validate) and the
// authorization-code flow through it.
//
// Token refresh is delegated to the oauth2 library's TokenSource; this package
// never interprets token expiry itself.
package auth
