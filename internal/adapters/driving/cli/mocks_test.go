package cli

import (
	"context"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
	"github.com/memento-labs/vaultsearch/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	page *domain.SearchPage
	err  error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchPage, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Results: []domain.SearchResult{}, Page: 1, PageSize: 10}, nil
	}
	return m.page, nil
}

// mockIndexerService is a mock implementation of driving.IndexerService.
type mockIndexerService struct {
	jobID  string
	status driving.RebuildStatus
	err    error

	lastRoot string
}

func (m *mockIndexerService) OnDocumentChanged(_ context.Context, _ domain.DocumentChange) error {
	return m.err
}

func (m *mockIndexerService) OnDocumentDeleted(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexerService) OnFolderRenamed(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockIndexerService) OnFolderRemoved(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexerService) Rebuild(_ context.Context, root string) (string, error) {
	m.lastRoot = root
	return m.jobID, m.err
}

func (m *mockIndexerService) Status() driving.RebuildStatus {
	return m.status
}

func (m *mockIndexerService) Flush(_ context.Context) error {
	return m.err
}

// mockSettingsStore is a mock implementation of driven.SettingsStore.
type mockSettingsStore struct {
	settings domain.Settings
	loadErr  error
	saveErr  error

	saved *domain.Settings
}

func (m *mockSettingsStore) Load() (domain.Settings, error) {
	return m.settings, m.loadErr
}

func (m *mockSettingsStore) Save(settings domain.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &settings
	return nil
}
