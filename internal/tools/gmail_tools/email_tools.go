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

// RegisterEmailTools registers message-level tools. Search and read are
// always available; send, reply and trash require write access.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	searchTool := mcp.NewTool("search_emails",
		mcp.WithDescription("Search Gmail messages using Gmail query syntax"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'in:inbox', 'from:user@example.com is:unread')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	readTool := mcp.NewTool("read_email",
		mcp.WithDescription("Read a Gmail message including headers and body"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to read"),
		),
		mcp.WithString("format",
			mcp.Description("Body format to prefer: 'text' (default) or 'html'"),
		),
	)
	s.AddTool(readTool, common.InstrumentedToolHandler("read_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadEmail(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	sendTool := mcp.NewTool("send_email",
		mcp.WithDescription("Send an email from a Gmail account"),
		mcp.WithString("account",
			mcp.Description("Account ID to send from. Omit to use the default account."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address, or comma-separated list of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body"),
		),
		mcp.WithString("cc",
			mcp.Description("CC addresses, comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC addresses, comma-separated"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Send the body as HTML (default: plain text)"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("send_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	replyTool := mcp.NewTool("reply_email",
		mcp.WithDescription("Reply to a Gmail message, keeping it in the same thread"),
		mcp.WithString("account",
			mcp.Description("Account ID to reply from. Omit to use the default account."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to reply to"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Reply body"),
		),
		mcp.WithString("cc",
			mcp.Description("CC addresses, comma-separated"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Send the body as HTML (default: plain text)"),
		),
	)
	s.AddTool(replyTool, common.InstrumentedToolHandler("reply_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplyEmail(ctx, request, sc)
		}))

	trashTool := mcp.NewTool("trash_emails",
		mcp.WithDescription("Move one or more Gmail messages to the trash"),
		mcp.WithString("account",
			mcp.Description("Account ID to use. Omit to use the default account."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to trash"),
		),
	)
	s.AddTool(trashTool, common.InstrumentedToolHandler("trash_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTrashEmails(ctx, request, sc)
		}))

	return nil
}

func splitAddresses(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	maxResults := int64(10)
	if v, ok := args["maxResults"].(float64); ok {
		maxResults = int64(v)
	}

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	messages, err := client.SearchMessages(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search messages: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d messages (account: %s):\n", len(messages), resolved)
	for i, m := range messages {
		fmt.Fprintf(&sb, "%d. ID: %s | From: %s | Subject: %s\n",
			i+1, m.Id, gmail.HeaderValue(m, "From"), gmail.HeaderValue(m, "Subject"))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleReadEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	format := "text"
	if v, ok := args["format"].(string); ok && v != "" {
		format = v
	}
	if format != "text" && format != "html" {
		return mcp.NewToolResultError("format must be 'text' or 'html'"), nil
	}

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	msg, err := client.GetMessage(messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get message: %v", err)), nil
	}

	body, err := client.GetMessageBody(messageID, format)
	if err != nil {
		body = fmt.Sprintf("(no %s body: %v)", format, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Account: %s\n", resolved)
	fmt.Fprintf(&sb, "From: %s\n", gmail.HeaderValue(msg, "From"))
	fmt.Fprintf(&sb, "To: %s\n", gmail.HeaderValue(msg, "To"))
	fmt.Fprintf(&sb, "Date: %s\n", gmail.HeaderValue(msg, "Date"))
	fmt.Fprintf(&sb, "Subject: %s\n", gmail.HeaderValue(msg, "Subject"))
	fmt.Fprintf(&sb, "Thread: %s\n\n%s\n", msg.ThreadId, body)

	return mcp.NewToolResultText(sb.String()), nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	to, _ := args["to"].(string)
	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)
	if to == "" || subject == "" || body == "" {
		return mcp.NewToolResultError("to, subject and body are required"), nil
	}

	cc, _ := args["cc"].(string)
	bcc, _ := args["bcc"].(string)
	isHTML, _ := args["html"].(bool)

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	id, err := client.SendEmail(&gmail.EmailMessage{
		To:      splitAddresses(to),
		Cc:      splitAddresses(cc),
		Bcc:     splitAddresses(bcc),
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email sent from account %s, message ID: %s", resolved, id)), nil
}

func handleReplyEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	messageID, _ := args["messageId"].(string)
	body, _ := args["body"].(string)
	if messageID == "" || body == "" {
		return mcp.NewToolResultError("messageId and body are required"), nil
	}

	cc, _ := args["cc"].(string)
	isHTML, _ := args["html"].(bool)

	client, resolved, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	id, err := client.ReplyToEmail(messageID, body, splitAddresses(cc), nil, isHTML)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send reply: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reply sent from account %s, message ID: %s", resolved, id)), nil
}

func handleTrashEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, _, err := sc.GmailClient(ctx, account)
	if err != nil {
		return common.AccountErrorResult(account, err), nil
	}

	results := batch.ProcessBatch(messageIDs, func(id string) (string, error) {
		if err := client.TrashMessage(id); err != nil {
			return "", err
		}
		return "moved to trash", nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
