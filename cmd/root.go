package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcp-panther application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcp-panther",
	Short: "MCP server for the Panther security platform",
	Long: `mcp-panther exposes Panther alert triage, detection management, and
data lake querying as MCP tools, so AI assistants can investigate and
act on security operations data through a permission-gated catalog.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-panther version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
