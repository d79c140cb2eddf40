package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete [identifier]",
	Aliases: []string{"rm"},
	Short:   "Delete prompts",
	Long:    "Delete a prompt by ID or description. Without an identifier, or when it matches nothing, pick any number of prompts from a menu with Space.",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		var targets []prompt.Prompt
		if len(args) > 0 {
			p, err := a.store.Find(args[0])
			switch {
			case err == nil:
				targets = []prompt.Prompt{p}
			case errors.Is(err, storage.ErrNotFound):
				terminal.Warning(fmt.Sprintf("No prompt matches %q; pick from the list instead.", args[0]))
			default:
				return err
			}
		}
		if len(targets) == 0 {
			targets, err = a.pickForDeletion()
			if err != nil {
				return finish(err, "Deletion")
			}
			if len(targets) == 0 {
				terminal.Info("Nothing selected.")
				return nil
			}
		}

		terminal.Header("Prompts to delete")
		for _, p := range targets {
			terminal.Detail(p.ShortID(), a.out.Line(p))
		}
		if !deleteForce {
			ok, err := a.console.Confirm(fmt.Sprintf("Delete %d prompt(s)?", len(targets)))
			if err != nil {
				return finish(err, "Deletion")
			}
			if !ok {
				terminal.Cancelled("Deletion")
				return nil
			}
		}

		ids := make([]string, len(targets))
		for i, p := range targets {
			ids[i] = p.ID
		}
		removed, err := a.store.Delete(ids...)
		if err != nil {
			return fmt.Errorf("failed to delete prompts: %w", err)
		}
		a.usage.Forget(ids...)
		for _, p := range removed {
			terminal.Success(fmt.Sprintf("Prompt '%s' deleted", p.Description))
		}

		a.autoSync(cmd.Context())
		return nil
	},
}

func (a *app) pickForDeletion() ([]prompt.Prompt, error) {
	prompts, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		a.out.Empty("prompts")
		return nil, nil
	}
	picked, err := a.console.SelectMulti("Select prompts to delete (Space toggles, Enter confirms)",
		prompt.SelectionLines(prompts, false))
	if err != nil {
		return nil, err
	}
	out := make([]prompt.Prompt, 0, len(picked))
	for _, i := range picked {
		out = append(out, prompts[i])
	}
	return out, nil
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without asking for confirmation")
}
