package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"animetrack/internal/config"
	"animetrack/internal/mal"
	"animetrack/internal/storage"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api      *tgbotapi.BotAPI
	db       storage.Storage
	catalog  mal.Fetcher
	cfg      *config.Manager
	states   map[int64]*ConversationState
	statesMu sync.Mutex
	logger   *zap.Logger
}

// ConversationState tracks the state of multi-step commands. statesMu guards
// the map; Step and Data are touched without it, which relies on the single
// owner sending messages one at a time.
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}
