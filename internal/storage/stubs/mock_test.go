package stubs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animetrack/internal/models"
)

func snapshotAt(animeID int64, name string, mean float64, updated time.Time) models.Snapshot {
	return models.Snapshot{
		AnimeID:   animeID,
		AnimeName: name,
		Stats: models.Stats{
			Mean:        mean,
			UsersAll:    1000,
			UsersScored: 500,
			Status:      "currently_airing",
			Updated:     updated,
		},
	}
}

func TestLatestInfoPicksNewestSnapshot(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.0, base)))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.2, base.Add(48*time.Hour))))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.1, base.Add(24*time.Hour))))

	latest, err := db.LatestInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 8.2, latest.Mean)
}

func TestLatestInfoUnknownTitle(t *testing.T) {
	db := NewMockDB()

	latest, err := db.LatestInfo(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestInsertInfoTruncatesToSeconds(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	updated := time.Date(2026, 8, 1, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.0, updated)))

	latest, err := db.LatestInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, updated.Truncate(time.Second), latest.Updated)
}

func TestListAnimeDeduplicatesAndSorts(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertInfo(ctx, snapshotAt(5, "Monster", 8.8, base)))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.0, base)))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren S2", 8.1, base.Add(time.Hour))))

	titles, err := db.ListAnime(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, models.Anime{ID: 1, Name: "Frieren S2"}, titles[0])
	assert.Equal(t, models.Anime{ID: 5, Name: "Monster"}, titles[1])
}

func TestRenameKeepsHistory(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Old", 8.0, base)))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Old", 8.1, base.Add(time.Hour))))

	require.NoError(t, db.RenameAnime(ctx, 1, "New"))

	latest, err := db.LatestInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "New", latest.AnimeName)
	assert.Equal(t, 8.1, latest.Mean, "rename must not touch metrics")
}

func TestDeleteRemovesWholeHistory(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.0, base)))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(1, "Frieren", 8.1, base.Add(time.Hour))))
	require.NoError(t, db.InsertInfo(ctx, snapshotAt(5, "Monster", 8.8, base)))

	require.NoError(t, db.DeleteAnime(ctx, 1))

	latest, err := db.LatestInfo(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, latest)

	titles, err := db.ListAnime(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 1)
	assert.Equal(t, int64(5), titles[0].ID)
}
