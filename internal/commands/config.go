package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moasq/promptheus/internal/config"
	"github.com/moasq/promptheus/internal/secrets"
	"github.com/moasq/promptheus/internal/terminal"
)

var configResetForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCmd.RunE(cmd, args)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		g := a.cfg.General
		terminal.Header("Promptheus configuration")
		terminal.Detail("Config file", a.cfg.Path())
		terminal.Detail("Prompt file", g.PromptFile)
		terminal.Detail("Editor", g.Editor)
		terminal.Detail("Select command", g.SelectCmd)
		terminal.Detail("Default tags", strings.Join(g.DefaultTags, ", "))
		terminal.Detail("Sort by", g.SortBy)
		terminal.Detail("Auto sync", fmt.Sprint(g.AutoSync))
		terminal.Detail("Color", fmt.Sprint(g.Color))
		terminal.Detail("Content preview", fmt.Sprint(g.ContentPreview))

		if !a.cfg.Gist.Configured() {
			fmt.Println()
			terminal.Info("Gist sync is not configured.")
			terminal.Hint("Add a [gist] section with file_name = \"prompts.toml\" to " + a.cfg.Path())
			return nil
		}
		terminal.Header("Gist")
		terminal.Detail("File name", a.cfg.Gist.FileName)
		terminal.Detail("Gist ID", valueOr(a.cfg.Gist.GistID, "(created on first upload)"))
		terminal.Detail("Public", fmt.Sprint(a.cfg.Gist.Public))
		terminal.Detail("Auto sync", fmt.Sprint(a.cfg.Gist.AutoSync))

		_, source, err := secrets.GitHubToken(a.secrets())
		switch {
		case err == nil && source == "store":
			terminal.Detail("Token", "stored in "+secrets.Describe(a.secrets()))
		case err == nil:
			terminal.Detail("Token", "from $"+source)
		case secrets.IsNotFound(err):
			terminal.Detail("Token", "not set")
		default:
			terminal.Detail("Token", "unreadable: "+err.Error())
		}
		return nil
	},
}

var configOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open config.toml in your editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return terminal.OpenInEditor(a.cfg.General.Editor, a.cfg.Path(), 0)
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			path = config.DefaultPath()
		}
		if !configResetForce {
			ok, err := terminal.NewConsole(terminal.NewTTY()).Confirm("Overwrite " + path + " with defaults?")
			if err != nil {
				return finish(err, "Reset")
			}
			if !ok {
				terminal.Cancelled("Reset")
				return nil
			}
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		if _, err := config.Load(path); err != nil {
			return err
		}
		terminal.Success("Configuration reset: " + path)
		return nil
	},
}

var configTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the GitHub token used for gist sync",
}

var configTokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store a GitHub token with the gist scope",
	Long:  "Store a GitHub personal access token in the OS keychain, or in a private credentials.toml when no keychain is available. Without an argument the token is read without echo.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		var token string
		if len(args) > 0 {
			token = args[0]
		} else if token, err = readSecret("GitHub token: "); err != nil {
			return err
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return errors.New("token cannot be empty")
		}
		store := a.secrets()
		if err := store.Set(secrets.GitHubTokenKey, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		terminal.Success("Token stored in " + secrets.Describe(store))
		return nil
	},
}

var configTokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored GitHub token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		if err := a.secrets().Delete(secrets.GitHubTokenKey); err != nil {
			return fmt.Errorf("failed to remove token: %w", err)
		}
		terminal.Success("Token removed")
		return nil
	},
}

func readSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no token given and stdin is not a terminal")
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return string(b), nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	configResetCmd.Flags().BoolVarP(&configResetForce, "force", "f", false, "Reset without asking")

	configTokenCmd.AddCommand(configTokenSetCmd)
	configTokenCmd.AddCommand(configTokenClearCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configOpenCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configTokenCmd)
}
