// Command vaultsearch indexes a vault of Markdown and plain-text notes
// and serves ranked full-text search over CLI and MCP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/memento-labs/vaultsearch/internal/adapters/driven/config/file"
	"github.com/memento-labs/vaultsearch/internal/adapters/driven/storage/sqlite"
	"github.com/memento-labs/vaultsearch/internal/adapters/driven/vault"
	"github.com/memento-labs/vaultsearch/internal/adapters/driving/cli"
	"github.com/memento-labs/vaultsearch/internal/analyzers"
	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driven"
	"github.com/memento-labs/vaultsearch/internal/core/services"
	"github.com/memento-labs/vaultsearch/internal/normalizers"
	"github.com/memento-labs/vaultsearch/internal/tokenizer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	indexStore, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening index store: %w", err)
	}
	defer indexStore.Close() //nolint:errcheck

	contentTok, nameTok, err := buildTokenizers(settings)
	if err != nil {
		return err
	}

	analyzerRegistry := analyzers.NewRegistry()
	analyzers.RegisterDefaults(analyzerRegistry)
	pipeline, err := analyzers.NewPipelineFromNames(analyzerRegistry, nil, "delimiter", "stemmer")
	if err != nil {
		return err
	}

	indexer := services.NewIndexer(indexStore, contentTok, nameTok, pipeline,
		services.WithDebounce(settings.DebounceWindow),
		services.WithRebuildConcurrency(settings.RebuildConcurrency),
	)

	var reader driven.ContentReader
	if settings.VaultPath != "" {
		reader = vault.NewReader(settings.VaultPath)
	}

	searchOpts := []services.SearchOption{
		services.WithFilenameWeight(settings.FilenameWeight),
		services.WithDefaultPageSize(settings.PageSize),
	}
	if reader != nil {
		searchOpts = append(searchOpts, services.WithContentReader(reader))
	}
	engine := services.NewSearchEngine(indexStore, contentTok, pipeline, searchOpts...)

	cli.SetServices(&cli.Services{
		Indexer:   indexer,
		Search:    engine,
		Settings:  settings,
		Store:     settingsStore,
		Reader:    reader,
		VaultPath: settings.VaultPath,
	})

	if err := cli.Execute(ctx); err != nil {
		return err
	}

	// Let in-flight index work finish before the store closes.
	return indexer.Flush(context.Background())
}

// buildTokenizers constructs the content and filename tokenizers from
// the configured normalizer lists.
func buildTokenizers(settings domain.Settings) (content, filename *tokenizer.Tokenizer, err error) {
	registry := normalizers.NewRegistry()
	normalizers.RegisterDefaults(registry)

	cfg := map[string]map[string]any{
		"markup": {"patterns": settings.SqueezePatterns},
	}

	contentPipe, err := normalizers.NewPipeline(registry, cfg, settings.ContentNormalizers...)
	if err != nil {
		return nil, nil, fmt.Errorf("building content normalizers: %w", err)
	}
	namePipe, err := normalizers.NewPipeline(registry, cfg, settings.FilenameNormalizers...)
	if err != nil {
		return nil, nil, fmt.Errorf("building filename normalizers: %w", err)
	}

	opts := []tokenizer.Option{
		tokenizer.WithStopwordThreshold(settings.StopwordThreshold),
	}
	if settings.PartialStopwordRemoval {
		opts = append(opts, tokenizer.WithPartialStopwordRemoval())
	}

	return tokenizer.New(contentPipe, opts...), tokenizer.New(namePipe, opts...), nil
}
