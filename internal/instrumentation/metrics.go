package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrTool      = "tool"
	attrResult    = "result"
	attrOperation = "operation"
	attrExplicit  = "explicit"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a safe no-op recorder.
type Metrics struct {
	accountResolutionsTotal metric.Int64Counter
	accountOperationsTotal  metric.Int64Counter
	oauthExchangesTotal     metric.Int64Counter
	identityLookupsTotal    metric.Int64Counter
	toolInvocationsTotal    metric.Int64Counter
	toolDuration            metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with all instruments registered.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.accountResolutionsTotal, err = meter.Int64Counter(
		"account_resolutions_total",
		metric.WithDescription("Total number of account resolutions, by outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account_resolutions_total counter: %w", err)
	}

	m.accountOperationsTotal, err = meter.Int64Counter(
		"account_operations_total",
		metric.WithDescription("Total number of account lifecycle operations (add/remove/update/set-default)"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account_operations_total counter: %w", err)
	}

	m.oauthExchangesTotal, err = meter.Int64Counter(
		"oauth_exchanges_total",
		metric.WithDescription("Total number of authorization code exchanges"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_exchanges_total counter: %w", err)
	}

	m.identityLookupsTotal, err = meter.Int64Counter(
		"identity_lookups_total",
		metric.WithDescription("Total number of provider identity lookups, by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity_lookups_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAccountResolution records one account resolution. Explicit reports
// whether the caller named an account or relied on the default.
func (m *Metrics) RecordAccountResolution(ctx context.Context, result string, explicit bool) {
	if m.accountResolutionsTotal == nil {
		return
	}
	m.accountResolutionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
		attribute.Bool(attrExplicit, explicit),
	))
}

// RecordAccountOperation records one lifecycle operation by name and outcome.
func (m *Metrics) RecordAccountOperation(ctx context.Context, operation, result string) {
	if m.accountOperationsTotal == nil {
		return
	}
	m.accountOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	))
}

// RecordOAuthExchange records one authorization code exchange.
func (m *Metrics) RecordOAuthExchange(ctx context.Context, result string) {
	if m.oauthExchangesTotal == nil {
		return
	}
	m.oauthExchangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordIdentityLookup records one identity lookup. Result is success,
// fallback (profile endpoint served the address) or error (sentinel used).
func (m *Metrics) RecordIdentityLookup(ctx context.Context, result string) {
	if m.identityLookupsTotal == nil {
		return
	}
	m.identityLookupsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordToolInvocation records one MCP tool call with its duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, result string, duration time.Duration) {
	if m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrResult, result),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
