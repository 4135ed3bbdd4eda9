package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"animetrack/internal/config"
	"animetrack/internal/mal"
	"animetrack/internal/models"
	"animetrack/internal/report"
	"animetrack/internal/storage"
)

// Notifier delivers messages to the owner's chat. Delivery is best-effort:
// implementations swallow transport failures instead of returning them.
type Notifier interface {
	NotifyOwner(ctx context.Context, text string)
	ReportOwner(ctx context.Context, msg report.Message)
}

// AnimeJob periodically refreshes stats for every tracked title, persists a
// new snapshot and sends the owner a change report
type AnimeJob struct {
	cfg     func() *config.Config
	db      storage.Storage
	catalog mal.Fetcher
	notify  Notifier
	logger  *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnimeJob creates the update job. cfg is called at the start of every
// cycle so schedule changes applied by a config reload take effect without a
// restart.
func NewAnimeJob(cfg func() *config.Config, db storage.Storage, catalog mal.Fetcher, notify Notifier, logger *zap.Logger) *AnimeJob {
	return &AnimeJob{
		cfg:     cfg,
		db:      db,
		catalog: catalog,
		notify:  notify,
		logger:  logger,
	}
}

// Start launches the job loop in its own goroutine
func (j *AnimeJob) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})

	j.logger.Info("Anime update job started")
	go func() {
		defer close(j.done)
		j.loop(ctx)
	}()
}

// Stop cancels the job loop and waits for it to finish. A stopped job is
// only restartable with a fresh Start.
func (j *AnimeJob) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
	j.logger.Info("Anime update job stopped")
}

// loop sleeps until each scheduled run and executes one cycle. Cancellation
// is only honored at the sleep point, so a cycle in flight always completes
// its current title without leaving half-written state.
func (j *AnimeJob) loop(ctx context.Context) {
	for {
		delay, ok := Interval(j.cfg(), time.Now().UTC())
		if !ok {
			j.logger.Info("Anime update job: wrong interval params, stopping")
			return
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := j.runCycle(ctx); err != nil {
			j.logger.Error("Anime update cycle failed", zap.Error(err))
		}
	}
}

// runCycle refreshes every tracked title once. A fetch failure for any title
// ends the whole cycle after a best-effort notice; the remaining titles wait
// for the next scheduled run.
func (j *AnimeJob) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in update cycle: %v", r)
		}
	}()

	cycleStart := time.Now().UTC()

	allAnime, err := j.db.ListAnime(ctx)
	if err != nil {
		return fmt.Errorf("failed to list anime: %w", err)
	}

	for _, anime := range allAnime {
		info, err := j.catalog.AnimeInfo(ctx, anime.ID)
		if err != nil {
			j.logger.Warn("Failed to fetch anime info",
				zap.Int64("anime_id", anime.ID),
				zap.String("anime_name", anime.Name),
				zap.Error(err),
			)
			j.notify.NotifyOwner(ctx, fmt.Sprintf("Didn't get %s anime info", anime.Name))
			return nil
		}

		last, err := j.db.LatestInfo(ctx, anime.ID)
		if err != nil {
			return fmt.Errorf("failed to load latest snapshot for anime %d: %w", anime.ID, err)
		}

		_, msg := report.Changes(anime.Name, last, info)

		snapshot := models.Snapshot{
			AnimeID:   anime.ID,
			AnimeName: anime.Name,
			Stats:     info,
		}
		snapshot.Updated = cycleStart
		if err := j.db.InsertInfo(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to insert snapshot for anime %d: %w", anime.ID, err)
		}

		j.notify.ReportOwner(ctx, msg)
	}

	return nil
}
