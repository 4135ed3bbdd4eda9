package ch

import (
	"context"
	"crypto/tls"
	"fmt"

	"animetrack/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	// This method is kept for interface compatibility
	return nil
}

// ListAnime returns tracked titles deduplicated by id, ordered by id
func (db *ClickHouseDB) ListAnime(ctx context.Context) ([]models.Anime, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT anime_id, anyLast(anime_name)
		FROM anime_info
		GROUP BY anime_id
		ORDER BY anime_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list anime: %w", err)
	}
	defer rows.Close()

	var anime []models.Anime
	for rows.Next() {
		var a models.Anime
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan anime: %w", err)
		}
		anime = append(anime, a)
	}
	return anime, nil
}

// LatestInfo returns the most recent snapshot for the anime, or nil when the
// title has no snapshots
func (db *ClickHouseDB) LatestInfo(ctx context.Context, animeID int64) (*models.Snapshot, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT anime_id, anime_name, rank, mean, users_all, users_scored, status, updated
		FROM anime_info
		WHERE anime_id = ?
		ORDER BY updated DESC
		LIMIT 1
	`, animeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	var s models.Snapshot
	if err := rows.Scan(&s.AnimeID, &s.AnimeName, &s.Rank, &s.Mean, &s.UsersAll, &s.UsersScored, &s.Status, &s.Updated); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return &s, nil
}

// InsertInfo appends a new snapshot row
func (db *ClickHouseDB) InsertInfo(ctx context.Context, snapshot models.Snapshot) error {
	err := db.conn.Exec(ctx, `
		INSERT INTO anime_info (anime_id, anime_name, rank, mean, users_all, users_scored, status, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.AnimeID, snapshot.AnimeName, snapshot.Rank, snapshot.Mean,
		snapshot.UsersAll, snapshot.UsersScored, snapshot.Status, snapshot.Updated.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// RenameAnime rewrites the display name on all snapshots of the title.
// The mutation runs synchronously so a follow-up read sees the new name.
func (db *ClickHouseDB) RenameAnime(ctx context.Context, animeID int64, newName string) error {
	err := db.conn.Exec(ctx, `
		ALTER TABLE anime_info UPDATE anime_name = ? WHERE anime_id = ?
		SETTINGS mutations_sync = 2
	`, newName, animeID)
	if err != nil {
		return fmt.Errorf("failed to rename anime: %w", err)
	}
	return nil
}

// DeleteAnime removes the title together with its whole snapshot history
func (db *ClickHouseDB) DeleteAnime(ctx context.Context, animeID int64) error {
	err := db.conn.Exec(ctx, `
		ALTER TABLE anime_info DELETE WHERE anime_id = ?
		SETTINGS mutations_sync = 2
	`, animeID)
	if err != nil {
		return fmt.Errorf("failed to delete anime: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
