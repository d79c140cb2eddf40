package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/export"
	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

var (
	exportFormat   string
	exportTag      string
	exportCategory string

	importFormat string
	importMerge  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export prompts to HTML, JSON, YAML, Markdown or TOML",
	Long:  "Export prompts to a file, or to stdout when file is -. The format follows the file extension unless --format is given; HTML is the default.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := pickFormat(exportFormat, path, export.HTML)
		if err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		prompts, err := a.store.Search(storage.Filter{Tag: exportTag, Category: exportCategory})
		if err != nil {
			return err
		}

		if path == "-" {
			return export.Export(os.Stdout, prompts, format, time.Now())
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := export.Export(f, prompts, format, time.Now()); err != nil {
			f.Close()
			return fmt.Errorf("failed to export: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		terminal.Success(fmt.Sprintf("Exported %d prompt(s) to %s (%s)", len(prompts), path, format))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import prompts from TOML, JSON or YAML",
	Long:  "Import prompts from a file, or stdin when file is -. Without --merge the imported prompts replace the library; with --merge only prompts not already present are added.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := pickFormat(importFormat, path, export.TOML)
		if err != nil {
			return err
		}
		data, err := readInput(path)
		if err != nil {
			return err
		}
		incoming, err := export.Import(data, format)
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		if importMerge {
			existing, err := a.store.Load()
			if err != nil {
				return err
			}
			merged, added := export.Merge(existing, incoming)
			if err := a.store.Save(merged); err != nil {
				return fmt.Errorf("failed to save prompts: %w", err)
			}
			terminal.Success(fmt.Sprintf("Imported %d new prompt(s), %d already present", added, len(incoming)-added))
		} else {
			if err := a.store.Save(incoming); err != nil {
				return fmt.Errorf("failed to save prompts: %w", err)
			}
			terminal.Success(fmt.Sprintf("Imported %d prompt(s), replacing the library", len(incoming)))
		}

		a.autoSync(cmd.Context())
		return nil
	},
}

// pickFormat prefers an explicit --format, then the file extension.
func pickFormat(flag, path string, def export.Format) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	return export.DetectFormat(path, def), nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "html, json, yaml, markdown or toml")
	exportCmd.Flags().StringVarP(&exportTag, "tag", "t", "", "Only prompts with this tag")
	exportCmd.Flags().StringVarP(&exportCategory, "category", "c", "", "Only prompts in this category")

	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "toml, json or yaml")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Add to the existing prompts instead of replacing them")
}
