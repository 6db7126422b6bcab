// Package server holds the shared runtime state for the MCP server: the
// account manager, cached Gmail clients per account, the metrics recorder,
// and the HTTP side-cars (metrics endpoint, health probes).
//
// Tools receive a *ServerContext and resolve accounts through it. Client
// construction is lazy; a Gmail service client is built the first time a
// resolved account is used and reused afterwards.
package server
