package account_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailfold/internal/auth"
	"github.com/teemow/mailfold/internal/instrumentation"
	"github.com/teemow/mailfold/internal/server"
	"github.com/teemow/mailfold/internal/tools/common"
)

// RegisterAccountTools registers account management tools with the MCP
// server. Listing and validation are always available; mutations require
// write access.
func RegisterAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("list_accounts",
		mcp.WithDescription("List all configured Gmail accounts and which one is the default"),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_accounts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	validateTool := mcp.NewTool("validate_account",
		mcp.WithDescription("Check that an account's stored credentials still yield a usable token"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account ID to validate"),
		),
	)
	s.AddTool(validateTool, common.InstrumentedToolHandler("validate_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleValidateAccount(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	updateTool := mcp.NewTool("update_account",
		mcp.WithDescription("Update an account's display name or tag"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account ID to update"),
		),
		mcp.WithString("name",
			mcp.Description("New display name"),
		),
		mcp.WithString("tag",
			mcp.Description("New tag (e.g., 'work', 'personal')"),
		),
	)
	s.AddTool(updateTool, common.InstrumentedToolHandler("update_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateAccount(ctx, request, sc)
		}))

	setDefaultTool := mcp.NewTool("set_default_account",
		mcp.WithDescription("Set which account is used when tools omit the account argument"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account ID to make the default"),
		),
	)
	s.AddTool(setDefaultTool, common.InstrumentedToolHandler("set_default_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSetDefaultAccount(ctx, request, sc)
		}))

	removeTool := mcp.NewTool("remove_account",
		mcp.WithDescription("Remove an account and delete its stored credentials"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account ID to remove"),
		),
	)
	s.AddTool(removeTool, common.InstrumentedToolHandler("remove_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveAccount(ctx, request, sc)
		}))

	return nil
}

func requiredAccountArg(args map[string]interface{}) (string, *mcp.CallToolResult) {
	account, ok := args["account"].(string)
	if !ok || account == "" {
		return "", mcp.NewToolResultError("account is required")
	}
	return account, nil
}

func handleListAccounts(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	accounts := sc.Manager().ListAccounts()
	sc.Metrics().RecordAccountOperation(ctx, "list", instrumentation.ResultSuccess)

	if len(accounts) == 0 {
		return mcp.NewToolResultText("No accounts configured. Run 'mailfold auth' to add one."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d accounts:\n", len(accounts))
	for _, a := range accounts {
		marker := " "
		if a.Default {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %s", marker, a.ID)
		if a.Info.Name != "" {
			fmt.Fprintf(&sb, " (%s)", a.Info.Name)
		}
		if a.Info.Tag != "" {
			fmt.Fprintf(&sb, " [%s]", a.Info.Tag)
		}
		if !a.Info.LastUsed.IsZero() {
			fmt.Fprintf(&sb, " last used %s", a.Info.LastUsed.Format(time.RFC3339))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n* marks the default account.")

	return mcp.NewToolResultText(sb.String()), nil
}

func handleValidateAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account, errResult := requiredAccountArg(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	if err := sc.Manager().ValidateAccount(ctx, account); err != nil {
		sc.Metrics().RecordAccountOperation(ctx, "validate", instrumentation.ResultError)
		return mcp.NewToolResultError(fmt.Sprintf("Account %s is not usable: %v", account, err)), nil
	}

	sc.Metrics().RecordAccountOperation(ctx, "validate", instrumentation.ResultSuccess)
	return mcp.NewToolResultText(fmt.Sprintf("Account %s has valid credentials.", account)), nil
}

func handleUpdateAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account, errResult := requiredAccountArg(args)
	if errResult != nil {
		return errResult, nil
	}

	var opts auth.UpdateOptions
	if v, ok := args["name"].(string); ok {
		opts.Name = &v
	}
	if v, ok := args["tag"].(string); ok {
		opts.Tag = &v
	}
	if opts.Name == nil && opts.Tag == nil {
		return mcp.NewToolResultError("at least one of name or tag is required"), nil
	}

	if !sc.Manager().UpdateAccount(account, opts) {
		sc.Metrics().RecordAccountOperation(ctx, "update", instrumentation.ResultError)
		return mcp.NewToolResultError(fmt.Sprintf("Account %s not found", account)), nil
	}

	sc.Metrics().RecordAccountOperation(ctx, "update", instrumentation.ResultSuccess)
	return mcp.NewToolResultText(fmt.Sprintf("Account %s updated.", account)), nil
}

func handleSetDefaultAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account, errResult := requiredAccountArg(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	if !sc.Manager().SetDefaultAccount(account) {
		sc.Metrics().RecordAccountOperation(ctx, "set_default", instrumentation.ResultError)
		return mcp.NewToolResultError(fmt.Sprintf("Account %s not found", account)), nil
	}

	sc.Metrics().RecordAccountOperation(ctx, "set_default", instrumentation.ResultSuccess)
	return mcp.NewToolResultText(fmt.Sprintf("Account %s is now the default.", account)), nil
}

func handleRemoveAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account, errResult := requiredAccountArg(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	removed := sc.Manager().RemoveAccount(account)
	sc.ForgetGmailClient(account)

	if !removed {
		sc.Metrics().RecordAccountOperation(ctx, "remove", instrumentation.ResultError)
		return mcp.NewToolResultError(fmt.Sprintf("Account %s not found", account)), nil
	}

	sc.Metrics().RecordAccountOperation(ctx, "remove", instrumentation.ResultSuccess)
	return mcp.NewToolResultText(fmt.Sprintf("Account %s removed and its credentials deleted.", account)), nil
}
