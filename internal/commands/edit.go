package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

var (
	editTag    string
	editEditor string
)

var editCmd = &cobra.Command{
	Use:   "edit [identifier]",
	Short: "Open a prompt in your editor",
	Long:  "Open the prompt file in the configured editor at the chosen prompt. Without an identifier the prompt is picked interactively.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		var identifier string
		if len(args) > 0 {
			identifier = args[0]
		}

		p, ok, err := a.resolvePrompt(cmd.Context(), identifier, "Edit which prompt?", storage.Filter{Tag: editTag})
		if err != nil {
			return finish(notFound(err, identifier), "Prompt selection")
		}
		if !ok {
			return nil
		}

		line, err := a.store.LineOf(p.Description)
		if err != nil {
			return fmt.Errorf("failed to locate %q in %s: %w", p.Description, a.store.Path(), err)
		}

		editor := a.cfg.General.Editor
		if editEditor != "" {
			editor = editEditor
		}
		a.logger.Sugar().Debugf("editing %s at line %d with %s", a.store.Path(), line, editor)
		if err := terminal.OpenInEditor(editor, a.store.Path(), line); err != nil {
			return err
		}

		a.autoSync(cmd.Context())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <identifier>",
	Short: "Show prompt details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		p, err := a.store.Find(args[0])
		if err != nil {
			return notFound(err, args[0])
		}
		a.out.Prompt(p)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editTag, "tag", "t", "", "Only offer prompts with this tag")
	editCmd.Flags().StringVarP(&editEditor, "editor", "e", "", "Editor to use instead of the configured one")
}
