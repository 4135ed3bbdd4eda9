package mal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"animetrack/internal/models"
)

// ErrIncomplete is returned when the API answered 200 but the body is missing
// expected metric fields
var ErrIncomplete = errors.New("mal: incomplete anime info in response")

// StatusError is returned for non-success API responses
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mal: unexpected status %d", e.Code)
}

// Fetcher fetches current stats for one anime
type Fetcher interface {
	AnimeInfo(ctx context.Context, animeID int64) (models.Stats, error)
}

// Client talks to the MyAnimeList API
type Client struct {
	baseURL  string
	header   string
	clientID string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a MyAnimeList API client
func NewClient(baseURL, header, clientID string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		header:   header,
		clientID: clientID,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// AnimeInfo fetches the current stats for one anime by its MAL id
func (c *Client) AnimeInfo(ctx context.Context, animeID int64) (models.Stats, error) {
	url := fmt.Sprintf("%s/anime/%d?fields=mean,num_list_users,num_scoring_users,rank,status", c.baseURL, animeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to build anime request: %w", err)
	}
	req.Header.Set(c.header, c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch anime info", zap.Int64("anime_id", animeID), zap.Error(err))
		return models.Stats{}, fmt.Errorf("failed to fetch anime %d: %w", animeID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Unexpected status from MAL API",
			zap.Int64("anime_id", animeID),
			zap.Int("status_code", resp.StatusCode),
		)
		return models.Stats{}, &StatusError{Code: resp.StatusCode}
	}

	var body struct {
		Rank            *int64   `json:"rank"`
		Mean            *float64 `json:"mean"`
		NumListUsers    *int64   `json:"num_list_users"`
		NumScoringUsers *int64   `json:"num_scoring_users"`
		Status          string   `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error("Failed to decode MAL response", zap.Int64("anime_id", animeID), zap.Error(err))
		return models.Stats{}, fmt.Errorf("failed to decode anime %d response: %w", animeID, err)
	}

	// Rank is legitimately absent for unranked titles; everything else must be there
	if body.Mean == nil || body.NumListUsers == nil || body.NumScoringUsers == nil || body.Status == "" {
		c.logger.Error("Incomplete anime info from MAL", zap.Int64("anime_id", animeID))
		return models.Stats{}, ErrIncomplete
	}

	return models.Stats{
		Rank:        body.Rank,
		Mean:        *body.Mean,
		UsersAll:    *body.NumListUsers,
		UsersScored: *body.NumScoringUsers,
		Status:      body.Status,
		Updated:     time.Now().UTC(),
	}, nil
}
