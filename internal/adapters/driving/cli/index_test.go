package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
)

// withIndexerService swaps the injected indexer service for a test.
func withIndexerService(t *testing.T, mock *mockIndexerService) {
	t.Helper()
	originalIndexer := indexerService
	originalVault := vaultPath
	indexerService = mock
	t.Cleanup(func() {
		indexerService = originalIndexer
		vaultPath = originalVault
		indexRoot = ""
	})
}

func TestIndexCmd_UsesConfiguredVault(t *testing.T) {
	mock := &mockIndexerService{
		jobID:  "job-1",
		status: driving.RebuildStatus{DocumentsIndexed: 3},
	}
	withIndexerService(t, mock)
	vaultPath = "/vault"

	out, err := execute(t, "index")
	require.NoError(t, err)

	assert.Equal(t, "/vault", mock.lastRoot)
	assert.Contains(t, out, "Indexed 3 documents")
}

func TestIndexCmd_ExplicitRootWins(t *testing.T) {
	mock := &mockIndexerService{}
	withIndexerService(t, mock)
	vaultPath = "/vault"

	_, err := execute(t, "index", "--root", "/other")
	require.NoError(t, err)
	assert.Equal(t, "/other", mock.lastRoot)
}

func TestIndexCmd_NoVaultConfigured(t *testing.T) {
	withIndexerService(t, &mockIndexerService{})
	vaultPath = ""

	_, err := execute(t, "index")
	assert.Error(t, err)
}

func TestIndexCmd_PropagatesError(t *testing.T) {
	withIndexerService(t, &mockIndexerService{err: errors.New("walk failed")})
	vaultPath = "/vault"

	_, err := execute(t, "index")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk failed")
}
