package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	// configFlag holds the --config flag value.
	configFlag string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "promptheus",
	Short: "Prompt and snippet manager for the terminal",
	Long: `Promptheus keeps prompt templates with tags and categories in a TOML file,
finds them with a fuzzy finder, fills in <name> and <name=default> variables,
and syncs the library to a GitHub gist.

In the multi-line editor Enter saves, Ctrl+J, Shift+Enter or Alt+Enter insert a
line break, and Esc or Ctrl+C cancel.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so network calls stop early.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "C", "", "Path to config.toml (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
}
