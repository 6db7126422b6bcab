package gmail_tools

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/teemow/mailfold/internal/auth"
	"github.com/teemow/mailfold/internal/server"
)

func testServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	keys := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://auth.invalid/auth",
			TokenURL: "https://auth.invalid/token",
		},
	}
	manager := auth.NewManager(
		auth.NewFactory(keys),
		auth.NewCredentialStore(filepath.Join(dir, "accounts")),
		auth.NewRegistry(filepath.Join(dir, "accounts.json"), logger),
		logger,
	)

	sc, err := server.NewServerContext(context.Background(), manager)
	if err != nil {
		t.Fatalf("NewServerContext failed: %v", err)
	}
	t.Cleanup(func() { sc.Shutdown() })
	return sc
}

func TestRegisterGmailTools(t *testing.T) {
	sc := testServerContext(t)

	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterGmailTools(s, sc, false); err != nil {
		t.Fatalf("RegisterGmailTools failed: %v", err)
	}
}

func TestRegisterGmailToolsReadOnly(t *testing.T) {
	sc := testServerContext(t)
	sc.SetReadOnly(true)

	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatalf("RegisterGmailTools failed: %v", err)
	}
}

func TestSplitAddresses(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single address", "a@example.com", []string{"a@example.com"}},
		{"multiple addresses", "a@example.com,b@example.com", []string{"a@example.com", "b@example.com"}},
		{"spaces around commas", "a@example.com, b@example.com", []string{"a@example.com", "b@example.com"}},
		{"trailing comma", "a@example.com,", []string{"a@example.com"}},
		{"only commas", ",,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAddresses(tt.input)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("splitAddresses(%q) = %v, want nil", tt.input, result)
				}
				return
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAddresses(%q) = %v, want %v", tt.input, result, tt.expected)
			}
			for i := range tt.expected {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAddresses(%q) = %v, want %v", tt.input, result, tt.expected)
					break
				}
			}
		})
	}
}
