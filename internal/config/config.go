package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	TelegramToken  string
	TelegramSecret string // webhook secret token (required in webhook mode)
	OwnerID        int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// MyAnimeList API
	MALAPIURL   string
	MALHeader   string
	MALClientID string

	// Anime update job schedule
	AnimeUpdateType  string // "delay", "update_at" or empty (job disabled)
	AnimeUpdateValue int
	AnimeUpdateUnit  string // minutes, hours, days
	AnimeUpdateAt    string // HH:MM, UTC

	// Notifications relay
	NotificationsSecret  string
	NotificationsAllowed []string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	UseMockDB bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Owner ID (required) - the single chat that receives reports and may issue commands
	ownerStr := os.Getenv("OWNER_ID")
	if ownerStr == "" {
		return nil, fmt.Errorf("OWNER_ID is required (Telegram user ID of the bot owner)")
	}
	ownerID, err := strconv.ParseInt(strings.TrimSpace(ownerStr), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OWNER_ID: %s", ownerStr)
	}
	config.OwnerID = ownerID

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
		config.TelegramSecret = os.Getenv("TELEGRAM_SECRET")
		if config.TelegramSecret == "" {
			return nil, fmt.Errorf("TELEGRAM_SECRET is required when WEBHOOK_MODE is true")
		}
	}

	// MyAnimeList API access (required)
	config.MALAPIURL = os.Getenv("MAL_API_URL")
	if config.MALAPIURL == "" {
		config.MALAPIURL = "https://api.myanimelist.net/v2"
	}
	config.MALHeader = os.Getenv("MAL_HEADER")
	if config.MALHeader == "" {
		config.MALHeader = "X-MAL-CLIENT-ID"
	}
	config.MALClientID = os.Getenv("MAL_CLIENT_ID")
	if config.MALClientID == "" {
		return nil, fmt.Errorf("MAL_CLIENT_ID is required")
	}

	// Anime update job schedule. Values are validated here for early feedback;
	// the job re-reads them through the Manager on every cycle.
	config.AnimeUpdateType = os.Getenv("ANIME_UPDATE_TYPE")
	switch config.AnimeUpdateType {
	case "":
		// job disabled
	case "delay":
		value, err := strconv.Atoi(os.Getenv("ANIME_UPDATE_DELAY_VALUE"))
		if err != nil || value <= 0 {
			return nil, fmt.Errorf("ANIME_UPDATE_DELAY_VALUE must be a positive integer")
		}
		config.AnimeUpdateValue = value

		config.AnimeUpdateUnit = os.Getenv("ANIME_UPDATE_DELAY_UNIT")
		switch config.AnimeUpdateUnit {
		case "minutes", "hours", "days":
		default:
			return nil, fmt.Errorf("invalid ANIME_UPDATE_DELAY_UNIT: %s (want minutes, hours or days)", config.AnimeUpdateUnit)
		}
	case "update_at":
		config.AnimeUpdateAt = os.Getenv("ANIME_UPDATE_AT")
		if _, err := time.Parse("15:04", config.AnimeUpdateAt); err != nil {
			return nil, fmt.Errorf("invalid ANIME_UPDATE_AT: %s (want HH:MM)", config.AnimeUpdateAt)
		}
	default:
		return nil, fmt.Errorf("invalid ANIME_UPDATE_TYPE: %s (want delay or update_at)", config.AnimeUpdateType)
	}

	// Notifications relay (optional; endpoint refuses everything without a secret)
	config.NotificationsSecret = os.Getenv("NOTIFICATIONS_SECRET")
	if allowed := os.Getenv("NOTIFICATIONS_ALLOWED"); allowed != "" {
		for _, sender := range strings.Split(allowed, ",") {
			config.NotificationsAllowed = append(config.NotificationsAllowed, strings.TrimSpace(sender))
		}
	}

	// Use Mock DB (default: false)
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	// ClickHouse configuration (required if not using mock)
	if !config.UseMockDB {
		config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
		if config.ClickHouseHost == "" {
			return nil, fmt.Errorf("CLICKHOUSE_HOST is required when USE_MOCK_DB is not set")
		}

		portStr := os.Getenv("CLICKHOUSE_PORT")
		if portStr == "" {
			config.ClickHousePort = 9000 // Default ClickHouse native port
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		// Password is optional, can be empty

		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	}

	return config, nil
}

// SenderAllowed reports whether a notification sender is on the allow-list
func (c *Config) SenderAllowed(sender string) bool {
	for _, allowed := range c.NotificationsAllowed {
		if allowed == sender {
			return true
		}
	}
	return false
}
