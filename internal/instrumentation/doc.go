// Package instrumentation provides OpenTelemetry metrics and tracing for the
// mailfold MCP server.
//
// Metrics cover the surfaces that matter for a credential manager: account
// resolutions (split by outcome so "no account configured" and "credentials
// missing" stay distinguishable), OAuth code exchanges, identity lookups and
// MCP tool invocations. Metrics are exposed via Prometheus by default; OTLP
// and stdout exporters are available for push-based setups and debugging.
//
// Account identifiers are deliberately not used as metric labels to keep
// cardinality bounded and to avoid leaking account names into metrics
// backends.
package instrumentation
