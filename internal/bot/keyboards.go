package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"animetrack/internal/models"
)

// animeListKeyboard builds the /anime menu: one row per title, then the Add
// action and an End button
func animeListKeyboard(allAnime []models.Anime) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, anime := range allAnime {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(anime.Name, fmt.Sprintf("anime:%d", anime.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Add", "anime_add"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("End", "abort:anime"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// animeActionsKeyboard builds the per-title action menu shown under the
// title's info view
func animeActionsKeyboard(animeID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Update", fmt.Sprintf("anime_action:%d:Update", animeID)),
			tgbotapi.NewInlineKeyboardButtonData("Rename", fmt.Sprintf("anime_action:%d:Rename", animeID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Delete", fmt.Sprintf("anime_action:%d:Delete", animeID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("End", "abort:anime_i"),
		),
	)
}

// abortKeyboard builds a single-button keyboard cancelling a form
func abortKeyboard(action string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Abort", "abort:"+action),
		),
	)
}
