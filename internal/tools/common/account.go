package common

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/mailfold/internal/auth"
)

// GetAccountFromArgs extracts the account ID from request arguments. An
// empty string means "use the default account"; resolution happens in the
// account manager, not here.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok {
		return accountVal
	}
	return ""
}

// AccountErrorResult translates account resolution failures into tool error
// results with actionable guidance, so agents know to run authentication
// instead of retrying.
func AccountErrorResult(account string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, auth.ErrNoAccount):
		return mcp.NewToolResultError(
			"No Gmail account is configured. Run 'mailfold auth' to authenticate an account first.")
	case errors.Is(err, auth.ErrCredentialsMissing):
		if account == "" {
			account = "the default account"
		}
		return mcp.NewToolResultError(fmt.Sprintf(
			"Credentials for %s are missing or invalid. Re-run 'mailfold auth --account %s' to re-authenticate.",
			account, account))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve account: %v", err))
	}
}
