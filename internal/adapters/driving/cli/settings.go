package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the indexing and ranking settings.

Settings are stored as TOML under ~/.vaultsearch/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a settings value",
	Long: `Set one settings value and save the configuration.

Supported keys:
  vault_path         - root directory of the document vault
  stopword_threshold - stopword ratio above which removal is skipped
  filename_weight    - score multiplier for filename matches
  page_size          - default search page size`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Vault]")
	cmd.Printf("  Path: %s\n", orUnset(settings.VaultPath))
	cmd.Printf("  Data dir: %s\n", orUnset(settings.DataDir))
	cmd.Println()

	cmd.Println("[Tokenizer]")
	cmd.Printf("  Stopword threshold: %.2f\n", settings.StopwordThreshold)
	cmd.Printf("  Partial stopword removal: %t\n", settings.PartialStopwordRemoval)
	cmd.Printf("  Content normalizers: %s\n", strings.Join(settings.ContentNormalizers, ", "))
	cmd.Printf("  Filename normalizers: %s\n", strings.Join(settings.FilenameNormalizers, ", "))
	cmd.Println()

	cmd.Println("[Ranking]")
	cmd.Printf("  Filename weight: %.2f\n", settings.FilenameWeight)
	cmd.Printf("  Page size: %d\n", settings.PageSize)
	cmd.Println()

	cmd.Println("[Indexing]")
	cmd.Printf("  Debounce window: %s\n", settings.DebounceWindow)
	cmd.Printf("  Rebuild concurrency: %d\n", settings.RebuildConcurrency)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	key, value := args[0], args[1]
	if err := applySetting(&settings, key, value); err != nil {
		return err
	}

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// applySetting mutates one settings field from its string form.
func applySetting(settings *domain.Settings, key, value string) error {
	switch key {
	case "vault_path":
		settings.VaultPath = value
	case "stopword_threshold":
		if _, err := fmt.Sscanf(value, "%f", &settings.StopwordThreshold); err != nil {
			return fmt.Errorf("invalid stopword_threshold %q", value)
		}
	case "filename_weight":
		if _, err := fmt.Sscanf(value, "%f", &settings.FilenameWeight); err != nil {
			return fmt.Errorf("invalid filename_weight %q", value)
		}
	case "page_size":
		if _, err := fmt.Sscanf(value, "%d", &settings.PageSize); err != nil {
			return fmt.Errorf("invalid page_size %q", value)
		}
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
