package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/mailfold/internal/auth"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, not TextContent", result.Content[0])
	}
	return text.Text
}

func TestGetAccountFromArgs(t *testing.T) {
	if got := GetAccountFromArgs(map[string]interface{}{"account": "work"}); got != "work" {
		t.Errorf("got %q, want work", got)
	}
	if got := GetAccountFromArgs(map[string]interface{}{}); got != "" {
		t.Errorf("absent account should yield empty string, got %q", got)
	}
	if got := GetAccountFromArgs(map[string]interface{}{"account": 42}); got != "" {
		t.Errorf("non-string account should yield empty string, got %q", got)
	}
	if got := GetAccountFromArgs(nil); got != "" {
		t.Errorf("nil args should yield empty string, got %q", got)
	}
}

func TestAccountErrorResult(t *testing.T) {
	result := AccountErrorResult("", auth.ErrNoAccount)
	if !result.IsError {
		t.Error("expected error result")
	}
	if !strings.Contains(resultText(t, result), "mailfold auth") {
		t.Errorf("no-account guidance missing: %s", resultText(t, result))
	}

	result = AccountErrorResult("work", fmt.Errorf("%w: work", auth.ErrCredentialsMissing))
	text := resultText(t, result)
	if !strings.Contains(text, "--account work") {
		t.Errorf("re-auth guidance should name the account: %s", text)
	}

	// The default account has no identifier to name.
	result = AccountErrorResult("", auth.ErrCredentialsMissing)
	if !strings.Contains(resultText(t, result), "the default account") {
		t.Errorf("default-account wording missing: %s", resultText(t, result))
	}

	result = AccountErrorResult("work", errors.New("disk on fire"))
	if !strings.Contains(resultText(t, result), "disk on fire") {
		t.Errorf("unexpected generic message: %s", resultText(t, result))
	}
}
