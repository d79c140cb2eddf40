package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/terminal"
)

var (
	newDescription string
	newTags        string
	newCategory    string
	newContent     string
	newUseEditor   bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new prompt",
	Long: `Create a prompt. Anything not given as a flag is asked for interactively:
the content in the multi-line editor, tags one per line with Tab completion
over existing tags, and the category from a menu of existing categories.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		p, err := a.composePrompt()
		if err != nil {
			return finish(err, "Prompt creation")
		}
		if p.ID, err = a.store.Add(p); err != nil {
			return fmt.Errorf("failed to save prompt: %w", err)
		}
		terminal.Success(fmt.Sprintf("Prompt '%s' saved", p.Description))
		terminal.Detail("ID", p.ShortID())

		a.autoSync(cmd.Context())
		return nil
	},
}

func init() {
	newCmd.Flags().StringVarP(&newDescription, "description", "d", "", "Prompt description")
	newCmd.Flags().StringVarP(&newTags, "tag", "t", "", `Tags, space or comma separated ("go review")`)
	newCmd.Flags().StringVarP(&newCategory, "category", "c", "", "Prompt category")
	newCmd.Flags().StringVar(&newContent, "content", "", "Prompt content")
	newCmd.Flags().BoolVar(&newUseEditor, "editor", false, "Write the content in the configured editor")
}

// composePrompt gathers the fields of a new prompt from flags and the terminal.
func (a *app) composePrompt() (prompt.Prompt, error) {
	description := strings.TrimSpace(newDescription)
	if description == "" {
		var err error
		description, err = a.console.ReadLine("Description: ", nil)
		if err != nil {
			return prompt.Prompt{}, err
		}
		if description == "" {
			return prompt.Prompt{}, errors.New("description cannot be empty")
		}
	}

	content, err := a.readContent()
	if err != nil {
		return prompt.Prompt{}, err
	}
	if strings.TrimSpace(content) == "" {
		return prompt.Prompt{}, errors.New("prompt content cannot be empty")
	}

	p := prompt.New(description, content)

	if newTags != "" {
		for _, t := range prompt.ParseTags(newTags) {
			p.AddTag(t)
		}
	} else if err := a.askTags(&p); err != nil {
		return prompt.Prompt{}, err
	}
	for _, t := range a.cfg.General.DefaultTags {
		p.AddTag(t)
	}

	if newCategory != "" {
		p.Category = strings.TrimSpace(newCategory)
	} else if p.Category, err = a.askCategory(); err != nil {
		return prompt.Prompt{}, err
	}
	return p, nil
}

func (a *app) readContent() (string, error) {
	switch {
	case newContent != "":
		return newContent, nil
	case newUseEditor:
		return editTempFile(a.cfg.General.Editor, "")
	}
	return a.console.EditMultiline("Prompt content (Enter saves, Ctrl+J adds a line, Esc cancels):")
}

// editTempFile opens initial in editor and returns what was saved.
func editTempFile(editor, initial string) (string, error) {
	f, err := os.CreateTemp("", "promptheus-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := terminal.OpenInEditor(editor, path, 0); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func (a *app) askTags(p *prompt.Prompt) error {
	existing, err := a.store.Tags()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		terminal.Info("Existing tags: " + strings.Join(existing, ", "))
		terminal.Hint("Tab completes a tag. Leave the line empty to continue.")
	}
	for {
		tag, err := a.console.ReadLine("Add tag: ", existing)
		if err != nil {
			return err
		}
		if tag == "" {
			return nil
		}
		for _, t := range prompt.ParseTags(tag) {
			p.AddTag(t)
		}
	}
}

func (a *app) askCategory() (string, error) {
	categories, err := a.store.Categories()
	if err != nil {
		return "", err
	}
	if len(categories) == 0 {
		return a.console.ReadLine("Category (empty for none): ", nil)
	}
	choice, err := a.console.SelectWithCustom("Select a category", categories, "New category: ")
	if err != nil {
		return "", err
	}
	if choice.IsCustom {
		return choice.Custom, nil
	}
	return categories[choice.Index], nil
}
