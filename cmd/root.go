package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailfold application
var rootCmd = &cobra.Command{
	Use:   "mailfold",
	Short: "Multi-account Gmail MCP server",
	Long: `mailfold is an MCP (Model Context Protocol) server that gives AI
assistants access to one or more Gmail accounts: sending and searching
email, labels, filters, and batch operations.

Accounts are authenticated once with 'mailfold auth' and stored locally;
every tool can target a specific account or fall back to the default.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailfold version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newAccountsCmd())
}
