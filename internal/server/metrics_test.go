package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/teemow/mailfold/internal/instrumentation"
)

func TestNewMetricsServerValidation(t *testing.T) {
	if _, err := NewMetricsServer(MetricsServerConfig{}); err == nil {
		t.Error("missing provider should be rejected")
	}

	config := instrumentation.DefaultConfig()
	config.Enabled = false
	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider}); err == nil {
		t.Error("disabled provider should be rejected")
	}

	// A provider without a prometheus exporter has nothing to serve.
	config = instrumentation.DefaultConfig()
	config.MetricsExporter = instrumentation.ExporterStdout
	provider, err = instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	defer provider.Shutdown(context.Background())
	if _, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider}); err == nil {
		t.Error("non-prometheus exporter should be rejected")
	}
}

func TestMetricsServerServes(t *testing.T) {
	config := instrumentation.DefaultConfig()
	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	defer provider.Shutdown(context.Background())

	srv, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		InstrumentationProvider: provider,
		HealthChecker:           NewHealthChecker(nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	if srv.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr = %q", srv.Addr())
	}

	// The ready channel closes only once the listener is bound.
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.StartWithReadySignal(ready) }()

	select {
	case <-ready:
	case err := <-errCh:
		t.Fatalf("server exited before ready: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for listener")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		t.Errorf("Serve returned %v", err)
	}
}

func TestMetricsServerDefaultAddr(t *testing.T) {
	config := instrumentation.DefaultConfig()
	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	defer provider.Shutdown(context.Background())

	srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
	if err != nil {
		t.Fatal(err)
	}
	if srv.Addr() != DefaultMetricsAddr {
		t.Errorf("Addr = %q, want %q", srv.Addr(), DefaultMetricsAddr)
	}
}
