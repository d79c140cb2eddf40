package commands

import (
	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/promptserver"
)

var mcpCmd = &cobra.Command{
	Use:    "mcp",
	Short:  "Serve the prompt library over MCP stdio",
	Long:   "Starts an MCP server over stdio with list_prompts, get_prompt and render_prompt tools, so coding agents can look up and fill in saved prompts.",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return promptserver.New(a.store, Version, a.logger.Named("mcp")).Run(cmd.Context())
	},
}
