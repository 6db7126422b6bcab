// Package gmail wraps the Gmail API for one resolved account.
//
// Clients are constructed from the authenticated handle the auth.Manager
// resolves; this package never builds OAuth clients itself. All operations
// are stateless request/response calls against the remote API.
package gmail
