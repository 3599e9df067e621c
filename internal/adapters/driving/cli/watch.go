package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memento-labs/vaultsearch/internal/watcher"
)

var watchRebuildFirst bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and keep the index in sync",
	Long: `Watches the vault directory for file changes and re-indexes
documents as they are created, modified, renamed or deleted. Runs
until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRebuildFirst, "rebuild", false, "rebuild the whole index before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}
	if vaultPath == "" {
		return errors.New("no vault configured; set vault_path in the config")
	}

	ctx := cmd.Context()

	if watchRebuildFirst {
		cmd.Printf("Rebuilding index for %s...\n", vaultPath)
		if _, err := indexerService.Rebuild(ctx, vaultPath); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		status := indexerService.Status()
		cmd.Printf("Indexed %d documents (%d errors).\n", status.DocumentsIndexed, status.ErrorCount)
	}

	cmd.Printf("Watching %s (debounce %s, ctrl-c to stop)...\n", vaultPath, appSettings.DebounceWindow)

	err := watcher.New(indexerService, vaultPath).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
