package bot

import (
	"context"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"animetrack/internal/report"
)

// send delivers a message best-effort: transport failures are logged and
// discarded, never surfaced to the caller
func (b *Bot) send(c tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Debug("Failed to send message", zap.Error(err))
	}
}

// request fires an API call whose response body is irrelevant (callback
// answers, markup removal), swallowing failures like send does
func (b *Bot) request(c tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Request(c); err != nil {
		b.logger.Debug("Failed to perform request", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// NotifyOwner sends a plain text message to the owner's chat (jobs.Notifier)
func (b *Bot) NotifyOwner(ctx context.Context, text string) {
	b.sendText(b.cfg.Current().OwnerID, text)
}

// ReportOwner sends a rendered report to the owner's chat (jobs.Notifier)
func (b *Bot) ReportOwner(ctx context.Context, msg report.Message) {
	m := tgbotapi.NewMessage(b.cfg.Current().OwnerID, msg.Text)
	m.Entities = entities(msg.Spans)
	b.send(m)
}

// entities converts emphasis spans to Telegram message entities
func entities(spans []report.Span) []tgbotapi.MessageEntity {
	out := make([]tgbotapi.MessageEntity, 0, len(spans))
	for _, s := range spans {
		kind := "bold"
		if s.Italic {
			kind = "italic"
		}
		out = append(out, tgbotapi.MessageEntity{
			Type:   kind,
			Offset: s.Offset,
			Length: s.Length,
		})
	}
	return out
}

// removeKeyboard strips the inline keyboard from a previously sent message
func (b *Bot) removeKeyboard(chatID int64, messageID int) {
	markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	b.request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup))
}

// utf16Len measures a string in UTF-16 code units, the unit Telegram entity
// offsets are expressed in
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
