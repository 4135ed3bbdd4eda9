package jobs

import (
	"time"

	"animetrack/internal/config"
)

// Interval computes the delay until the next run of the anime update job.
// ok == false means the schedule configuration is invalid or absent; the
// runner treats that as a permanent stop signal.
func Interval(cfg *config.Config, now time.Time) (time.Duration, bool) {
	switch cfg.AnimeUpdateType {
	case "delay":
		if cfg.AnimeUpdateValue <= 0 {
			return 0, false
		}
		var unit time.Duration
		switch cfg.AnimeUpdateUnit {
		case "minutes":
			unit = time.Minute
		case "hours":
			unit = time.Hour
		case "days":
			unit = 24 * time.Hour
		default:
			return 0, false
		}
		return time.Duration(cfg.AnimeUpdateValue) * unit, true

	case "update_at":
		at, err := time.Parse("15:04", cfg.AnimeUpdateAt)
		if err != nil {
			return 0, false
		}
		now = now.UTC()
		target := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.UTC)
		delay := target.Sub(now)
		// A moment already past today wraps to its next-day occurrence
		if delay < 0 {
			delay += 24 * time.Hour
		}
		return delay.Truncate(time.Second), true
	}

	return 0, false
}
