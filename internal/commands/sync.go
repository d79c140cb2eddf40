package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasq/promptheus/internal/gistsync"
	"github.com/moasq/promptheus/internal/terminal"
)

var (
	syncUpload   bool
	syncDownload bool
	syncForce    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync prompts with a GitHub gist",
	Long: `Compare the prompt file with the gist and copy the newer side over the
older one. --upload or --download force the direction when the timestamps
disagree; --force transfers even when they match. The first upload creates the
gist and records its ID in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncUpload && syncDownload {
			return errors.New("--upload and --download are mutually exclusive")
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		syncer, client, err := a.syncer(cmd.Context())
		if err != nil {
			return err
		}

		spinner := terminal.NewSpinner(syncMessage(client.GistID()))
		spinner.Start()
		res, err := syncer.Sync(cmd.Context(), gistsync.Options{
			Upload:   syncUpload,
			Download: syncDownload,
			Force:    syncForce,
		})
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		a.reportSync(res)
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload local prompts to the gist, overwriting it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		syncer, _, err := a.syncer(cmd.Context())
		if err != nil {
			return err
		}

		spinner := terminal.NewSpinner("Pushing prompts...")
		spinner.Start()
		res, err := syncer.Push(cmd.Context())
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		if res.Direction == gistsync.None {
			terminal.Warning("No prompts found locally. Nothing to push.")
			return nil
		}
		a.reportSync(res)
		return nil
	},
}

func syncMessage(gistID string) string {
	if gistID == "" {
		return "Creating gist..."
	}
	return "Syncing with gist " + gistID + "..."
}

func init() {
	syncCmd.Flags().BoolVarP(&syncUpload, "upload", "u", false, "Upload local prompts when timestamps disagree")
	syncCmd.Flags().BoolVarP(&syncDownload, "download", "d", false, "Download remote prompts when timestamps disagree")
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Transfer even when timestamps match")
}
