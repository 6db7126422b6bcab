// Package cmd implements the mailfold command line interface: running the
// MCP server, authenticating Google accounts, and managing the account
// registry.
package cmd
