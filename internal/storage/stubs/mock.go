package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"animetrack/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu        sync.RWMutex
	snapshots []models.Snapshot
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		snapshots: make([]models.Snapshot, 0),
	}
}

// Initialize does nothing for mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// ListAnime returns tracked titles deduplicated by id, ordered by id
func (m *MockDB) ListAnime(ctx context.Context) ([]models.Anime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int64]string)
	for _, s := range m.snapshots {
		seen[s.AnimeID] = s.AnimeName
	}

	var anime []models.Anime
	for id, name := range seen {
		anime = append(anime, models.Anime{ID: id, Name: name})
	}

	sort.Slice(anime, func(i, j int) bool {
		return anime[i].ID < anime[j].ID
	})

	return anime, nil
}

// LatestInfo returns the most recent snapshot for the anime, or nil
func (m *MockDB) LatestInfo(ctx context.Context, animeID int64) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.Snapshot
	for i := range m.snapshots {
		s := m.snapshots[i]
		if s.AnimeID != animeID {
			continue
		}
		if latest == nil || s.Updated.After(latest.Updated) {
			copied := s
			latest = &copied
		}
	}

	return latest, nil
}

// InsertInfo appends a new snapshot
func (m *MockDB) InsertInfo(ctx context.Context, snapshot models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Second precision, matching what the real store persists
	snapshot.Updated = snapshot.Updated.UTC().Truncate(time.Second)
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

// RenameAnime rewrites the display name on all snapshots of the title
func (m *MockDB) RenameAnime(ctx context.Context, animeID int64, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.snapshots {
		if m.snapshots[i].AnimeID == animeID {
			m.snapshots[i].AnimeName = newName
		}
	}
	return nil
}

// DeleteAnime removes all snapshots of the title
func (m *MockDB) DeleteAnime(ctx context.Context, animeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.snapshots[:0]
	for _, s := range m.snapshots {
		if s.AnimeID != animeID {
			kept = append(kept, s)
		}
	}
	m.snapshots = kept
	return nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
