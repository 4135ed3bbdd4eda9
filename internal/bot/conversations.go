package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"animetrack/internal/models"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Command {
	case "anime_add":
		b.handleAddConversation(ctx, message, state)
	case "anime_rename":
		b.handleRenameConversation(ctx, message, state)
	}
}

// handleAddConversation drives the add-anime form: MAL id first, then the
// display name. The id is validated by actually fetching the title.
func (b *Bot) handleAddConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for the MAL anime id
		if formID, ok := state.Data["form_message_id"].(int); ok {
			b.removeKeyboard(message.Chat.ID, formID)
		}

		animeID, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
		if err != nil {
			b.sendText(message.Chat.ID, "Wrong MAL anime id given")
			state.Step = -1
			return
		}
		if _, err := b.catalog.AnimeInfo(ctx, animeID); err != nil {
			b.logger.Warn("Add anime: id validation failed", zap.Int64("anime_id", animeID), zap.Error(err))
			b.sendText(message.Chat.ID, "Wrong MAL anime id given")
			state.Step = -1
			return
		}

		last, err := b.db.LatestInfo(ctx, animeID)
		if err != nil {
			b.logger.Error("Failed to check existing anime", zap.Int64("anime_id", animeID), zap.Error(err))
			state.Step = -1
			return
		}
		if last != nil {
			b.sendText(message.Chat.ID, "Anime exists")
			state.Step = -1
			return
		}

		msg := tgbotapi.NewMessage(message.Chat.ID, "Enter anime name:")
		msg.ReplyMarkup = abortKeyboard("anime_a")
		b.send(msg)

		state.Data["anime_id"] = animeID
		state.Step = 2

	case 2: // Waiting for the display name
		animeID, ok := state.Data["anime_id"].(int64)
		if !ok {
			state.Step = -1
			return
		}
		animeName := strings.TrimSpace(message.Text)
		state.Step = -1

		// Fetch again right before inserting so the first snapshot holds
		// current values
		info, err := b.catalog.AnimeInfo(ctx, animeID)
		if err != nil {
			b.logger.Warn("Add anime: final fetch failed", zap.Int64("anime_id", animeID), zap.Error(err))
			b.sendText(message.Chat.ID, "No anime data was given from MAL, aborted")
			return
		}

		err = b.db.InsertInfo(ctx, models.Snapshot{
			AnimeID:   animeID,
			AnimeName: animeName,
			Stats:     info,
		})
		if err != nil {
			b.logger.Error("Failed to insert first snapshot", zap.Int64("anime_id", animeID), zap.Error(err))
			b.sendText(message.Chat.ID, "Failed to add anime")
			return
		}

		b.sendText(message.Chat.ID, "Anime was added")
	}
}

// handleRenameConversation applies the new display name to a tracked title
func (b *Bot) handleRenameConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for the new name
		animeID, ok := state.Data["anime_id"].(int64)
		state.Step = -1
		if !ok {
			return
		}

		newName := strings.TrimSpace(message.Text)
		if err := b.db.RenameAnime(ctx, animeID, newName); err != nil {
			b.logger.Error("Failed to rename anime", zap.Int64("anime_id", animeID), zap.Error(err))
			b.sendText(message.Chat.ID, "Failed to rename anime")
			return
		}

		b.sendText(message.Chat.ID, "Anime was renamed")
	}
}
