package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"animetrack/internal/models"
	"animetrack/internal/report"
)

// handleAnimeChoose shows the info view of one tracked title
func (b *Bot) handleAnimeChoose(ctx context.Context, query *tgbotapi.CallbackQuery, idData string) {
	animeID, err := strconv.ParseInt(idData, 10, 64)
	if err != nil {
		return
	}

	last, err := b.db.LatestInfo(ctx, animeID)
	if err != nil {
		b.logger.Error("Failed to load anime info", zap.Int64("anime_id", animeID), zap.Error(err))
		return
	}
	if last == nil {
		b.logger.Warn("No snapshots for chosen anime", zap.Int64("anime_id", animeID))
		return
	}

	msg := report.Overview(*last)
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, msg.Text)
	edit.Entities = entities(msg.Spans)
	markup := animeActionsKeyboard(animeID)
	edit.ReplyMarkup = &markup
	b.send(edit)
}

// handleAnimeAddStart begins the add-anime form
func (b *Bot) handleAnimeAddStart(query *tgbotapi.CallbackQuery) {
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
		"Add anime\nEnter MAL anime id:")
	markup := abortKeyboard("anime_a")
	edit.ReplyMarkup = &markup
	b.send(edit)

	b.setState(query.From.ID, &ConversationState{
		Command: "anime_add",
		Step:    1,
		Data: map[string]interface{}{
			"form_message_id": query.Message.MessageID,
		},
	})
}

// handleAnimeAction dispatches the per-title actions: Update, Rename, Delete
func (b *Bot) handleAnimeAction(ctx context.Context, query *tgbotapi.CallbackQuery, data string) {
	idData, action, ok := strings.Cut(data, ":")
	if !ok {
		return
	}
	animeID, err := strconv.ParseInt(idData, 10, 64)
	if err != nil {
		return
	}

	switch action {
	case "Update":
		b.handleAnimeUpdate(ctx, query, animeID)
	case "Rename":
		b.handleAnimeRenameStart(query, animeID)
	case "Delete":
		b.handleAnimeDelete(ctx, query, animeID)
	}
}

// handleAnimeUpdate is the interactive single-title update: fetch, diff
// against the latest snapshot, persist, and replace the shown message with
// the report. Shares the diff/render pipeline with the background job.
func (b *Bot) handleAnimeUpdate(ctx context.Context, query *tgbotapi.CallbackQuery, animeID int64) {
	info, err := b.catalog.AnimeInfo(ctx, animeID)
	if err != nil {
		b.logger.Warn("Interactive update fetch failed", zap.Int64("anime_id", animeID), zap.Error(err))
		edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
			query.Message.Text+"\nUpdate error")
		edit.Entities = query.Message.Entities
		b.send(edit)
		return
	}

	last, err := b.db.LatestInfo(ctx, animeID)
	if err != nil {
		b.logger.Error("Failed to load latest snapshot", zap.Int64("anime_id", animeID), zap.Error(err))
		return
	}

	animeName := ""
	if last != nil {
		animeName = last.AnimeName
	}

	_, msg := report.Changes(animeName, last, info)

	err = b.db.InsertInfo(ctx, models.Snapshot{
		AnimeID:   animeID,
		AnimeName: animeName,
		Stats:     info,
	})
	if err != nil {
		b.logger.Error("Failed to insert snapshot", zap.Int64("anime_id", animeID), zap.Error(err))
		return
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, msg.Text)
	edit.Entities = entities(msg.Spans)
	b.send(edit)
}

// handleAnimeRenameStart begins the rename form
func (b *Bot) handleAnimeRenameStart(query *tgbotapi.CallbackQuery, animeID int64) {
	b.removeKeyboard(query.Message.Chat.ID, query.Message.MessageID)

	msg := tgbotapi.NewMessage(query.Message.Chat.ID, "Rename anime to:")
	msg.ReplyMarkup = abortKeyboard("anime_r")
	b.send(msg)

	b.setState(query.From.ID, &ConversationState{
		Command: "anime_rename",
		Step:    1,
		Data: map[string]interface{}{
			"anime_id": animeID,
		},
	})
}

// handleAnimeDelete drops the title and its whole history
func (b *Bot) handleAnimeDelete(ctx context.Context, query *tgbotapi.CallbackQuery, animeID int64) {
	b.removeKeyboard(query.Message.Chat.ID, query.Message.MessageID)

	if err := b.db.DeleteAnime(ctx, animeID); err != nil {
		b.logger.Error("Failed to delete anime", zap.Int64("anime_id", animeID), zap.Error(err))
		b.sendText(query.Message.Chat.ID, "Failed to delete anime")
		return
	}
	b.sendText(query.Message.Chat.ID, "Anime was deleted")
}

// handleAbort cancels whatever flow the pressed button belongs to
func (b *Bot) handleAbort(ctx context.Context, query *tgbotapi.CallbackQuery, action string) {
	b.clearState(query.From.ID)

	switch action {
	case "anime":
		// Leaving the menu: replace it with a plain listing
		allAnime, err := b.db.ListAnime(ctx)
		if err != nil {
			b.logger.Error("Failed to list anime", zap.Error(err))
			return
		}
		names := make([]string, 0, len(allAnime))
		for _, anime := range allAnime {
			names = append(names, anime.Name)
		}
		b.send(tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, animeListText(names)))
	case "anime_i":
		// Leaving the info view: just drop the action buttons
		b.removeKeyboard(query.Message.Chat.ID, query.Message.MessageID)
	case "anime_a":
		b.send(tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
			"Add anime operation was aborted"))
	default:
		b.send(tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
			"Operation was aborted"))
	}
}
