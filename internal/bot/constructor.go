package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"animetrack/internal/config"
	"animetrack/internal/mal"
	"animetrack/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(cfg *config.Manager, db storage.Storage, catalog mal.Fetcher, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Current().TelegramToken)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:     api,
		db:      db,
		catalog: catalog,
		cfg:     cfg,
		states:  make(map[int64]*ConversationState),
		logger:  logger,
	}, nil
}
