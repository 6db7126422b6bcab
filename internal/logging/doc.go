// Package logging provides structured logging utilities for the mailfold application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// User emails are hashed before logging to prevent PII leakage while still
// allowing correlation of log entries, and OAuth tokens are never logged.
package logging
