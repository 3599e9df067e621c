package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// withSettingsStore swaps the injected settings store for a test.
func withSettingsStore(t *testing.T, mock *mockSettingsStore) {
	t.Helper()
	original := settingsStore
	settingsStore = mock
	t.Cleanup(func() { settingsStore = original })
}

func TestSettingsCmd_Show(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.VaultPath = "/vault"
	withSettingsStore(t, &mockSettingsStore{settings: settings})

	out, err := execute(t, "settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "Path: /vault")
	assert.Contains(t, out, "Stopword threshold: 0.50")
	assert.Contains(t, out, "Filename weight: 2.00")
}

func TestSettingsCmd_SetVaultPath(t *testing.T) {
	mock := &mockSettingsStore{settings: domain.DefaultSettings()}
	withSettingsStore(t, mock)

	out, err := execute(t, "settings", "set", "vault_path", "/notes")
	require.NoError(t, err)

	assert.Contains(t, out, "Set vault_path = /notes")
	require.NotNil(t, mock.saved)
	assert.Equal(t, "/notes", mock.saved.VaultPath)
}

func TestSettingsCmd_SetNumericValues(t *testing.T) {
	mock := &mockSettingsStore{settings: domain.DefaultSettings()}
	withSettingsStore(t, mock)

	_, err := execute(t, "settings", "set", "filename_weight", "3.5")
	require.NoError(t, err)
	require.NotNil(t, mock.saved)
	assert.Equal(t, 3.5, mock.saved.FilenameWeight)
}

func TestSettingsCmd_SetUnknownKey(t *testing.T) {
	withSettingsStore(t, &mockSettingsStore{settings: domain.DefaultSettings()})

	_, err := execute(t, "settings", "set", "bogus", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown settings key")
}

func TestApplySetting(t *testing.T) {
	settings := domain.DefaultSettings()

	require.NoError(t, applySetting(&settings, "stopword_threshold", "0.3"))
	assert.Equal(t, 0.3, settings.StopwordThreshold)

	require.NoError(t, applySetting(&settings, "page_size", "25"))
	assert.Equal(t, 25, settings.PageSize)

	assert.Error(t, applySetting(&settings, "stopword_threshold", "abc"))
}
