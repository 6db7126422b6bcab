// Package gmail_tools registers Gmail MCP tools: sending and replying,
// searching and reading messages, label management, filters, and batch
// operations.
//
// Every tool accepts an optional "account" argument. When omitted the
// default account is used, and every result reports which account actually
// served the request so multi-account agents never guess.
package gmail_tools
