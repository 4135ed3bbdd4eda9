package storage

import (
	"context"

	"animetrack/internal/models"
)

// Storage defines the interface for snapshot persistence operations
type Storage interface {
	// ListAnime returns the tracked titles, deduplicated by id, in a
	// deterministic (id-ascending) order
	ListAnime(ctx context.Context) ([]models.Anime, error)

	// LatestInfo returns the snapshot with the maximum capture time for the
	// given anime, or nil when the title has no snapshots
	LatestInfo(ctx context.Context, animeID int64) (*models.Snapshot, error)

	// InsertInfo appends a new snapshot; existing rows are never modified
	InsertInfo(ctx context.Context, snapshot models.Snapshot) error

	// RenameAnime rewrites the display name on all snapshots of a title,
	// leaving the metric history untouched
	RenameAnime(ctx context.Context, animeID int64, newName string) error

	// DeleteAnime removes a title together with its whole snapshot history
	DeleteAnime(ctx context.Context, animeID int64) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
