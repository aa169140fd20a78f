package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ari-wein/mcp-panther/internal/panther"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/internal/tools"
)

const toolsDescLength = 60

// toolsCmd prints the tool catalog without starting a server. Useful for
// checking which tools a restricted permission set would expose.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools this server exposes",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	// The catalog is static; no Panther connection is made.
	client := panther.NewClient("https://example.runpanther.net", panther.StaticToken(""), time.Second)

	reg := registry.New()
	if err := tools.RegisterAll(reg, client); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NAME", "PERMISSIONS", "DESCRIPTION"})

	for _, tool := range reg.All() {
		t.AppendRow(table.Row{
			tool.Name(),
			tool.Requires.String(),
			truncate(tool.Definition.Description, toolsDescLength),
		})
	}
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d tools\n", reg.Len())
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
