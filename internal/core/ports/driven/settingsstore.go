package driven

import "github.com/memento-labs/vaultsearch/internal/core/domain"

// SettingsStore persists engine settings.
// Backed by a TOML file in the user config directory.
type SettingsStore interface {
	// Load returns the stored settings, with defaults applied for
	// absent fields. A missing file yields pure defaults.
	Load() (domain.Settings, error)

	// Save writes the settings back to storage.
	Save(settings domain.Settings) error
}
