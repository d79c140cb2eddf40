package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/terminal"
	"github.com/moasq/promptheus/internal/update"
)

var (
	usageDays    int
	usageTop     int
	versionCheck bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show prompt execution history",
	Long:  "Display the most executed prompts and daily execution counts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		top := a.usage.Top(usageTop)
		if len(top) == 0 {
			terminal.Info("No prompts executed yet. Run `promptheus exec` to use one.")
			return nil
		}

		terminal.Header("Most executed")
		fmt.Printf("  %-40s %6s  %s\n", "Prompt", "Runs", "Last used")
		fmt.Printf("  %s\n", strings.Repeat("-", 64))
		for _, u := range top {
			fmt.Printf("  %-40s %6d  %s\n", truncate(u.Description, 40), u.Count, u.LastUsed.Format("2006-01-02 15:04"))
		}

		history := a.usage.History(usageDays)
		if len(history) == 0 {
			return nil
		}
		fmt.Println()
		terminal.Header("Daily History")
		fmt.Printf("  %-12s %8s\n", "Date", "Runs")
		fmt.Printf("  %s\n", strings.Repeat("-", 22))
		total := 0
		for _, day := range history {
			fmt.Printf("  %-12s %8d\n", day.Date, day.Executions)
			total += day.Executions
		}
		fmt.Printf("  %s\n", strings.Repeat("-", 22))
		fmt.Printf("  %-12s %8d\n", "Total", total)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("promptheus %s\n", Version)
		if !versionCheck {
			return nil
		}
		rel, err := update.NewChecker("moasq", "promptheus").Latest(cmd.Context(), Version)
		if err != nil {
			terminal.Warning("Update check failed: " + err.Error())
			return nil
		}
		if !rel.Newer() {
			terminal.Success("You are on the latest release.")
			return nil
		}
		terminal.Info(fmt.Sprintf("promptheus %s is available", rel.Latest))
		terminal.Hint(rel.URL)
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	usageCmd.Flags().IntVar(&usageDays, "days", 7, "Number of days of history to show")
	usageCmd.Flags().IntVar(&usageTop, "top", 10, "Number of prompts to rank")
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check GitHub for a newer release")
}
