// Package account_tools registers MCP tools for managing the configured
// Gmail accounts: listing, metadata updates, default selection, removal,
// and credential validation.
package account_tools
