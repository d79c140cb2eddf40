package commands

import (
	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/render"
	"github.com/moasq/promptheus/internal/storage"
)

var (
	listTag        string
	listCategory   string
	listFormat     string
	listTags       bool
	listCategories bool
	listStats      bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List prompts",
	Long:    "List prompts, optionally filtered by tag or category, as simple lines, detailed entries, a table or JSON.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		switch {
		case listTags:
			return a.printTags()
		case listCategories:
			return a.printCategories()
		case listStats:
			st, err := a.store.Stats()
			if err != nil {
				return err
			}
			a.out.Stats(st, a.usage.Top(5), a.usage.History(7))
			return nil
		}

		name := listFormat
		if name == "" {
			name = a.cfg.General.Format
		}
		format, err := render.ParseListFormat(name)
		if err != nil {
			return err
		}
		prompts, err := a.store.Search(storage.Filter{Tag: listTag, Category: listCategory})
		if err != nil {
			return err
		}
		return a.out.List(prompts, format)
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show all tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return a.printTags()
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show all categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return a.printCategories()
	},
}

func (a *app) printTags() error {
	tags, err := a.store.Tags()
	if err != nil {
		return err
	}
	a.out.Tags(tags)
	return nil
}

func (a *app) printCategories() error {
	categories, err := a.store.Categories()
	if err != nil {
		return err
	}
	a.out.Categories(categories)
	return nil
}

func init() {
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Only prompts with this tag")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only prompts in this category")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "", "Output format: simple, detailed, table or json")
	listCmd.Flags().BoolVar(&listTags, "tags", false, "List tags instead of prompts")
	listCmd.Flags().BoolVar(&listCategories, "categories", false, "List categories instead of prompts")
	listCmd.Flags().BoolVar(&listStats, "stats", false, "Show library and usage statistics")
}
