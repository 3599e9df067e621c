// Package cli implements the vaultsearch command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
	"github.com/memento-labs/vaultsearch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands dispatch to, injected by main before Execute.
var (
	indexerService driving.IndexerService
	searchService  driving.SearchService
	settingsStore  driven.SettingsStore
	contentReader  driven.ContentReader
	appSettings    domain.Settings
	vaultPath      string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vaultsearch",
	Short: "Full-text search over your document vault",
	Long: `vaultsearch indexes a directory of Markdown and plain-text notes
into a local SQLite inverted index and ranks queries with TF-IDF.

The index updates incrementally as files change and is also exposed to
AI assistants over the Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services aggregates everything the CLI commands need.
type Services struct {
	Indexer   driving.IndexerService
	Search    driving.SearchService
	Settings  domain.Settings
	Store     driven.SettingsStore
	Reader    driven.ContentReader
	VaultPath string
}

// SetServices injects the application services into the command tree.
func SetServices(s *Services) {
	indexerService = s.Indexer
	searchService = s.Search
	settingsStore = s.Store
	contentReader = s.Reader
	appSettings = s.Settings
	vaultPath = s.VaultPath
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
