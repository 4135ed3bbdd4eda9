package models

import "time"

// Anime is a tracked title identified by its MAL id
type Anime struct {
	ID   int64
	Name string
}

// Stats holds one set of metric values fetched from MAL
type Stats struct {
	Rank        *int64 // nil for unranked titles
	Mean        float64
	UsersAll    int64
	UsersScored int64
	Status      string
	Updated     time.Time // capture time, UTC
}

// Snapshot is an immutable, timestamped record of an anime's stats.
// Updating a title always inserts a new snapshot; old rows are never rewritten.
type Snapshot struct {
	AnimeID   int64
	AnimeName string
	Stats
}
