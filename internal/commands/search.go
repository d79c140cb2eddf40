package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/render"
	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

var (
	searchQuery    string
	searchTag      string
	searchCategory string
	searchExec     bool
	searchCopy     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find a prompt interactively",
	Long: `Pick a prompt with the configured finder (select_cmd). When the finder is
not installed an arrow-key menu is shown instead, ranked by the query.
The chosen prompt is shown, or executed with --exec or --copy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		query := searchQuery
		if query == "" && len(args) > 0 {
			query = args[0]
		}

		prompts, err := a.store.Search(storage.Filter{Tag: searchTag, Category: searchCategory})
		if err != nil {
			return err
		}
		if len(prompts) == 0 {
			a.out.Empty("prompts")
			return nil
		}

		p, ok, err := a.selectPrompt(cmd.Context(), "Search prompts", prompts, query)
		if err != nil {
			return finish(err, "Search")
		}
		if !ok {
			if query != "" {
				terminal.Info("No prompts match " + strings.TrimSpace(query) + ".")
			}
			return nil
		}

		if searchExec || searchCopy {
			return finish(a.execute(p, nil, searchCopy), "Prompt execution")
		}
		return finish(a.display(a.details(p), ""), "Prompt display")
	},
}

// details renders the detail view of p to a string so long prompts can be
// paged.
func (a *app) details(p prompt.Prompt) string {
	var sb strings.Builder
	render.New(&sb, a.cfg.General.Color, a.cfg.General.ContentPreview).Prompt(p)
	return sb.String()
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Initial finder query")
	searchCmd.Flags().StringVarP(&searchTag, "tag", "t", "", "Only prompts with this tag")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Only prompts in this category")
	searchCmd.Flags().BoolVar(&searchExec, "exec", false, "Execute the chosen prompt")
	searchCmd.Flags().BoolVar(&searchCopy, "copy", false, "Execute the chosen prompt and copy the result")
}
