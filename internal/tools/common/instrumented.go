package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailfold/internal/instrumentation"
	"github.com/teemow/mailfold/internal/server"
)

// ToolHandler is the handler signature expected by the MCP server.
type ToolHandler = mcpserver.ToolHandlerFunc

// InstrumentedToolHandler wraps a tool handler with invocation metrics.
// A handler error or an IsError result both count as failed invocations.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		result, err := handler(ctx, request)

		status := instrumentation.ResultSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.ResultError
		}
		sc.Metrics().RecordToolInvocation(ctx, toolName, status, time.Since(start))

		return result, err
	}
}
