package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStart acknowledges the bot is alive
func (b *Bot) handleStart(message *tgbotapi.Message) {
	b.logger.Info("Start command",
		zap.Int64("user_id", message.From.ID),
		zap.String("username", message.From.UserName),
	)
	b.sendText(message.Chat.ID, "Bot started")
}

// handleStop acknowledges a stop request
func (b *Bot) handleStop(message *tgbotapi.Message) {
	b.logger.Info("Stop command",
		zap.Int64("user_id", message.From.ID),
		zap.String("username", message.From.UserName),
	)
	b.sendText(message.Chat.ID, "Bot stopped")
}

// handleCommands lists everything the owner can do
func (b *Bot) handleCommands(message *tgbotapi.Message) {
	text := `Available commands:
● Anime actions
○ /anime
- Admin:
  ● Reload secrets
  ○ /secrets_reload`
	b.sendText(message.Chat.ID, text)
}

// handleAnime shows the tracked titles menu
func (b *Bot) handleAnime(ctx context.Context, message *tgbotapi.Message) {
	allAnime, err := b.db.ListAnime(ctx)
	if err != nil {
		b.logger.Error("Failed to list anime", zap.Error(err))
		b.sendText(message.Chat.ID, "Failed to load anime list")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Anime:")
	msg.ReplyMarkup = animeListKeyboard(allAnime)
	b.send(msg)
}

// handleSecretsReload re-reads and atomically swaps the configuration
func (b *Bot) handleSecretsReload(message *tgbotapi.Message) {
	b.logger.Info("Reloading configuration")

	if err := b.cfg.Reload(); err != nil {
		b.logger.Error("Failed to reload configuration", zap.Error(err))
		b.sendText(message.Chat.ID, "Reload failed:\n"+err.Error())
		return
	}

	b.logger.Info("Configuration reloaded")
	b.sendText(message.Chat.ID, "Reloaded")
}

// animeListText renders the plain title listing used when leaving the menu
func animeListText(names []string) string {
	if len(names) == 0 {
		return "Anime: no titles"
	}
	var text strings.Builder
	text.WriteString("Anime:")
	for _, name := range names {
		text.WriteString("\n● ")
		text.WriteString(name)
	}
	return text.String()
}
