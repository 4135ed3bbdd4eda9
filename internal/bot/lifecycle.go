package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start starts the bot in polling mode
func (b *Bot) Start() error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	// Create update configuration
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	// Get updates channel
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")

	// Handle updates (blocks here)
	b.handleUpdates(updates)
	return nil
}

// StartWebhook sets up the bot to receive updates via webhook. The secret
// token is passed as a raw parameter because the client library predates
// Bot API 6.1.
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	params := make(tgbotapi.Params)
	params["url"] = webhookURL + "/telegram-webhook"
	params.AddNonEmpty("secret_token", b.cfg.Current().TelegramSecret)
	params.AddBool("drop_pending_updates", true)

	if _, err := b.api.MakeRequest("setWebhook", params); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	// Get webhook info to verify
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}

	b.logger.Info("Bot configured for webhook mode")
	return nil
}

// HandleWebhookUpdate processes a single update
func (b *Bot) HandleWebhookUpdate(update tgbotapi.Update) {
	ownerID := b.cfg.Current().OwnerID

	// Handle regular messages
	if update.Message != nil {
		userID := update.Message.From.ID
		if userID != ownerID {
			b.logger.Warn("Unauthorized access attempt",
				zap.Int64("user_id", userID),
				zap.String("username", update.Message.From.UserName),
				zap.String("text", update.Message.Text),
			)
			// Strangers get a refusal only when they try to start the bot
			if update.Message.IsCommand() && update.Message.Command() == "start" {
				b.sendText(update.Message.Chat.ID, "You are not allowed to use this bot")
			}
			return
		}
		b.handleMessage(update.Message)
	}

	// Handle callback queries (inline keyboard button clicks)
	if update.CallbackQuery != nil {
		userID := update.CallbackQuery.From.ID
		if userID != ownerID {
			b.logger.Warn("Unauthorized callback query attempt",
				zap.Int64("user_id", userID),
				zap.String("callback_data", update.CallbackQuery.Data),
			)
			return
		}
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// handleUpdates processes incoming updates from polling mode
func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		b.HandleWebhookUpdate(update)
	}
}
