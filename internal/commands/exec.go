package commands

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

var (
	execCopy bool
	execVars []string
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

var execCmd = &cobra.Command{
	Use:   "exec [identifier]",
	Short: "Fill in a prompt's variables and print or copy it",
	Long: `Render a prompt. Variables written as <name> or <name=default> are taken
from --var flags or asked for one at a time; an empty answer keeps the default.
Long output opens in $PAGER.`,
	Example: `  promptheus exec Deploy --var ns=prod --copy`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseVars(execVars)
		if err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		var identifier string
		if len(args) > 0 {
			identifier = args[0]
		}

		p, ok, err := a.resolvePrompt(cmd.Context(), identifier, "Execute which prompt?", storage.Filter{})
		if err != nil {
			return finish(notFound(err, identifier), "Prompt selection")
		}
		if !ok {
			return nil
		}
		return finish(a.execute(p, values, execCopy), "Prompt execution")
	},
}

func init() {
	execCmd.Flags().BoolVar(&execCopy, "copy", false, "Copy the rendered prompt to the clipboard")
	execCmd.Flags().StringArrayVar(&execVars, "var", nil, "Variable value as name=value (repeatable)")
}

// parseVars turns name=value flags into a map. Later flags win.
func parseVars(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}

// fillVariables asks for every variable in content that given does not
// cover. A blank answer leaves a defaulted variable unset so its default
// applies.
func (a *app) fillVariables(content string, given map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(given))
	for k, v := range given {
		values[k] = v
	}

	var missing []prompt.Variable
	for _, v := range prompt.ParseVariables(content) {
		if _, ok := values[v.Name]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return values, nil
	}

	a.out.Variables(missing)
	for _, v := range missing {
		label := v.Name
		if v.HasDefault {
			label += " [" + v.Default + "]"
		}
		answer, err := a.console.ReadLine(label+": ", nil)
		if err != nil {
			return nil, err
		}
		if answer == "" && v.HasDefault {
			continue
		}
		values[v.Name] = answer
	}
	return values, nil
}

// execute renders p and copies or shows the result.
func (a *app) execute(p prompt.Prompt, given map[string]string, copyOut bool) error {
	values, err := a.fillVariables(p.Content, given)
	if err != nil {
		return err
	}
	rendered := prompt.ReplaceVariables(p.Content, values)
	a.usage.Record(p.ID, p.Description)

	if copyOut {
		if err := clipboardWrite(rendered); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		terminal.Success("Prompt copied to clipboard")
		return nil
	}
	return a.display(rendered, "Rendered Prompt")
}

// display shows content through the pager-aware viewer on a terminal and
// prints it verbatim when output is redirected.
func (a *app) display(content, title string) error {
	if !a.tty.IsTerminal() {
		fmt.Print(content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Println()
		}
		return nil
	}
	return a.console.DisplayContent(content, title, terminal.NewExternalPager())
}
