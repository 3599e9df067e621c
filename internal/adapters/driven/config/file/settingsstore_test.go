package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

func TestSettingsStore_LoadMissingFileReturnsDefaults(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestSettingsStore_SaveAndLoadRoundTrip(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	settings := domain.DefaultSettings()
	settings.VaultPath = "/vault"
	settings.StopwordThreshold = 0.3
	settings.FilenameWeight = 3.5
	settings.SqueezePatterns = []string{`==[^=]*==`}
	settings.DebounceWindow = 500 * time.Millisecond

	require.NoError(t, store.Save(settings))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestSettingsStore_SaveRejectsInvalid(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	bad := domain.DefaultSettings()
	bad.StopwordThreshold = 1.5

	err = store.Save(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsStore_LoadMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("vault_path = [broken"), 0600))

	_, err = store.Load()
	assert.Error(t, err)
}
