package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailfold/internal/gmail"
	"github.com/teemow/mailfold/internal/server"
	"github.com/teemow/mailfold/internal/tools/batch"
	"github.com/teemow/mailfold/internal/tools/common"
)

// RegisterFilterTools registers Gmail filter management tools.
func RegisterFilterTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("list_filters",
		mcp.WithDescription("List Gmail filters for an account"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_filters", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFilters(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("create_filter",
		mcp.WithDescription("Create a Gmail filter. At least one criterion and one action are required."),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("from",
			mcp.Description("Match messages from this sender"),
		),
		mcp.WithString("to",
			mcp.Description("Match messages sent to this recipient"),
		),
		mcp.WithString("subject",
			mcp.Description("Match messages with this subject"),
		),
		mcp.WithString("query",
			mcp.Description("Match messages using Gmail query syntax"),
		),
		mcp.WithBoolean("hasAttachment",
			mcp.Description("Match only messages with attachments"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Label ID or array of label IDs to apply"),
		),
		mcp.WithBoolean("archive",
			mcp.Description("Skip the inbox"),
		),
		mcp.WithBoolean("markAsRead",
			mcp.Description("Mark matching messages as read"),
		),
		mcp.WithBoolean("star",
			mcp.Description("Star matching messages"),
		),
		mcp.WithBoolean("delete",
			mcp.Description("Move matching messages to trash"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_filter", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFilter(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("delete_filter",
		mcp.WithDescription("Delete a Gmail filter by ID"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the filter to delete"),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler("delete_filter", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteFilter(ctx, request, sc)
		}))

	return nil
}

func handleListFilters(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	filters, err := client.ListFilters()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list filters: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d filters (account: %s):\n", len(filters), resolved)
	for _, f := range filters {
		fmt.Fprintf(&sb, "- ID: %s | criteria: %s | actions: %s\n", f.ID, f.CriteriaSummary(), f.ActionSummary())
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleCreateFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	criteria := gmail.FilterCriteria{}
	criteria.From, _ = args["from"].(string)
	criteria.To, _ = args["to"].(string)
	criteria.Subject, _ = args["subject"].(string)
	criteria.Query, _ = args["query"].(string)
	criteria.HasAttachment, _ = args["hasAttachment"].(bool)

	action := gmail.FilterAction{}
	if args["addLabelIds"] != nil {
		ids, err := batch.ParseStringOrArray(args["addLabelIds"], "addLabelIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		action.AddLabelIDs = ids
	}
	action.Archive, _ = args["archive"].(bool)
	action.MarkAsRead, _ = args["markAsRead"].(bool)
	action.Star, _ = args["star"].(bool)
	action.Delete, _ = args["delete"].(bool)

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	filter, err := client.CreateFilter(criteria, action)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create filter: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created filter %s on account %s", filter.ID, resolved)), nil
}

func handleDeleteFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	filterID, ok := args["filterId"].(string)
	if !ok || filterID == "" {
		return mcp.NewToolResultError("filterId is required"), nil
	}

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	if err := client.DeleteFilter(filterID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete filter: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted filter %s on account %s", filterID, resolved)), nil
}
