package gmail_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailfold/internal/server"
)

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
// In read-only mode only tools that cannot mutate the mailbox are exposed.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if err := RegisterLabelTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}

	if err := RegisterFilterTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register filter tools: %w", err)
	}

	return nil
}
