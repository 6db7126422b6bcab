package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailfold/internal/server"
	"github.com/teemow/mailfold/internal/tools/batch"
	"github.com/teemow/mailfold/internal/tools/common"
)

// RegisterLabelTools registers label listing and modification tools.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("list_email_labels",
		mcp.WithDescription("List all Gmail labels for an account"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_email_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("create_label",
		mcp.WithDescription("Create a new Gmail label"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Label name. Use '/' for nesting (e.g., 'Work/Receipts')."),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	modifyTool := mcp.NewTool("modify_email_labels",
		mcp.WithDescription("Add or remove labels on one or more Gmail messages. Remove the INBOX label to archive."),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to modify"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Label ID or array of label IDs to add"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Label ID or array of label IDs to remove"),
		),
	)
	s.AddTool(modifyTool, common.InstrumentedToolHandler("modify_email_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyLabels(ctx, request, sc)
		}))

	return nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	labels, err := client.ListLabels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d labels (account: %s):\n", len(labels), resolved)
	for _, l := range labels {
		fmt.Fprintf(&sb, "- %s (ID: %s, type: %s)\n", l.Name, l.ID, l.Type)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	label, err := client.CreateLabel(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created label %q (ID: %s) on account %s", label.Name, label.ID, resolved)), nil
}

func handleModifyLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var addIDs, removeIDs []string
	if args["addLabelIds"] != nil {
		if addIDs, err = batch.ParseStringOrArray(args["addLabelIds"], "addLabelIds"); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if args["removeLabelIds"] != nil {
		if removeIDs, err = batch.ParseStringOrArray(args["removeLabelIds"], "removeLabelIds"); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if len(addIDs) == 0 && len(removeIDs) == 0 {
		return mcp.NewToolResultError("at least one of addLabelIds or removeLabelIds is required"), nil
	}

	client, _, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	// Gmail's batchModify endpoint takes up to 1000 IDs but we chunk
	// conservatively so one bad ID fails a small chunk, not the whole batch.
	results := batch.ProcessChunks(messageIDs, batch.DefaultChunkSize, func(chunk []string) error {
		return client.BatchModifyLabels(chunk, addIDs, removeIDs)
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
