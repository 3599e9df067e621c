package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
)

var indexRoot string

var indexCmd = &cobra.Command{
	Use:   "index [vault]",
	Short: "Rebuild the vault index",
	Long: `Walks the vault and re-indexes every Markdown and plain-text
document from scratch. Documents that fail to read are skipped and
keep their previous index entries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexRoot, "root", "", "vault root (default: the configured vault)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	root := indexRoot
	if root == "" && len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		root = vaultPath
	}
	if root == "" {
		return errors.New("no vault configured; pass --root or set vault_path in the config")
	}

	cmd.Printf("Rebuilding index for %s...\n", root)

	if err := rebuildWithProgress(cmd.Context(), cmd, indexerService, root); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	status := indexerService.Status()
	cmd.Printf("Indexed %d documents (%d errors).\n", status.DocumentsIndexed, status.ErrorCount)
	return nil
}

// rebuildWithProgress runs the rebuild while displaying progress updates.
func rebuildWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	indexer driving.IndexerService,
	root string,
) error {
	errCh := make(chan error, 1)
	go func() {
		_, err := indexer.Rebuild(ctx, root)
		errCh <- err
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case err := <-errCh:
			return err
		case <-ticker.C:
			status := indexer.Status()
			if status.DocumentsIndexed > lastCount {
				cmd.Printf("\rIndexing... %d documents", status.DocumentsIndexed)
				lastCount = status.DocumentsIndexed
			}
		}
	}
}
