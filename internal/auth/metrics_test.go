package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/mailfold/internal/instrumentation"
)

// newRecordingMetrics returns a live recorder plus a collector that tallies
// one counter's data points by their result attribute.
func newRecordingMetrics(t *testing.T) (*instrumentation.Metrics, func(name string) map[string]int64) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := instrumentation.NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	counts := func(name string) map[string]int64 {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("Collect: %v", err)
		}
		out := make(map[string]int64)
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != name {
					continue
				}
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					t.Fatalf("%s is not an int64 counter", name)
				}
				for _, dp := range sum.DataPoints {
					if v, ok := dp.Attributes.Value(attribute.Key("result")); ok {
						out[v.AsString()] += dp.Value
					}
				}
			}
		}
		return out
	}
	return rec, counts
}

func TestManager_ResolveRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	rec, counts := newRecordingMetrics(t)
	m.SetMetrics(rec)

	// Each distinct failure mode lands on its own outcome label.
	m.Resolve(ctx, "")
	m.Resolve(ctx, "ghost")
	if err := m.AddAccount(ctx, "work", "Work", "", testCreds(), "w@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Resolve(ctx, ""); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	got := counts("account_resolutions_total")
	if got[instrumentation.ResultNoAccount] != 1 {
		t.Errorf("no_account resolutions = %d, want 1", got[instrumentation.ResultNoAccount])
	}
	if got[instrumentation.ResultCredentialsMissing] != 1 {
		t.Errorf("credentials_missing resolutions = %d, want 1", got[instrumentation.ResultCredentialsMissing])
	}
	if got[instrumentation.ResultSuccess] != 1 {
		t.Errorf("success resolutions = %d, want 1", got[instrumentation.ResultSuccess])
	}
}

func TestManager_CompleteAuthRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := jsonServer(t, http.StatusOK,
		`{"access_token": "at", "refresh_token": "rt", "token_type": "Bearer", "expires_in": 3600}`)
	userinfo := jsonServer(t, http.StatusOK, `{"email": "new@example.com"}`)

	keys := testKeys()
	keys.Endpoint.TokenURL = tokens.URL

	m := NewManager(
		NewFactory(keys),
		NewCredentialStore(filepath.Join(dir, "accounts")),
		NewRegistry(filepath.Join(dir, "accounts.json"), logger),
		logger,
	)
	m.userinfoEndpoint = userinfo.URL

	rec, counts := newRecordingMetrics(t)
	m.SetMetrics(rec)

	if _, err := m.CompleteAuth(ctx, "work", "Work", "", "good-code", DefaultRedirectURI); err != nil {
		t.Fatalf("CompleteAuth failed: %v", err)
	}

	exchanges := counts("oauth_exchanges_total")
	if exchanges[instrumentation.ResultSuccess] != 1 {
		t.Errorf("successful exchanges = %d, want 1", exchanges[instrumentation.ResultSuccess])
	}
	lookups := counts("identity_lookups_total")
	if lookups[instrumentation.ResultSuccess] != 1 {
		t.Errorf("successful lookups = %d, want 1", lookups[instrumentation.ResultSuccess])
	}
}

func TestManager_CompleteAuthRecordsExchangeFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := jsonServer(t, http.StatusBadRequest, `{"error": "invalid_grant"}`)

	keys := testKeys()
	keys.Endpoint.TokenURL = tokens.URL

	m := NewManager(
		NewFactory(keys),
		NewCredentialStore(filepath.Join(dir, "accounts")),
		NewRegistry(filepath.Join(dir, "accounts.json"), logger),
		logger,
	)

	rec, counts := newRecordingMetrics(t)
	m.SetMetrics(rec)

	if _, err := m.CompleteAuth(ctx, "work", "Work", "", "bad-code", DefaultRedirectURI); err == nil {
		t.Fatal("expected exchange failure")
	}

	exchanges := counts("oauth_exchanges_total")
	if exchanges[instrumentation.ResultError] != 1 {
		t.Errorf("failed exchanges = %d, want 1", exchanges[instrumentation.ResultError])
	}
}

func TestLookupIdentityRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	rec, counts := newRecordingMetrics(t)
	m.SetMetrics(rec)

	userinfo := jsonServer(t, http.StatusInternalServerError, `{}`)
	profile := jsonServer(t, http.StatusOK, `{"emailAddress": "box@example.com"}`)
	m.userinfoEndpoint = userinfo.URL
	m.gmailEndpoint = profile.URL

	client := m.newClient(ctx, "work", testCreds())
	if got := m.LookupIdentity(ctx, client); got != "box@example.com" {
		t.Fatalf("LookupIdentity = %q", got)
	}

	// Both endpoints down degrades to the sentinel address.
	m.gmailEndpoint = userinfo.URL
	if got := m.LookupIdentity(ctx, client); got != UnknownEmail {
		t.Fatalf("LookupIdentity = %q, want sentinel", got)
	}

	lookups := counts("identity_lookups_total")
	if lookups[instrumentation.ResultFallback] != 1 {
		t.Errorf("fallback lookups = %d, want 1", lookups[instrumentation.ResultFallback])
	}
	if lookups[instrumentation.ResultError] != 1 {
		t.Errorf("failed lookups = %d, want 1", lookups[instrumentation.ResultError])
	}
}
