package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message from the owner
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Check if user is in a conversation
	b.statesMu.Lock()
	state, inConversation := b.states[userID]
	if inConversation {
		if state.Step == -1 || message.IsCommand() {
			// Completed or interrupted conversation: clean it up and let the
			// command below be processed normally
			delete(b.states, userID)
			inConversation = false
		}
	}
	b.statesMu.Unlock()

	if inConversation && !message.IsCommand() {
		b.handleConversation(ctx, message, state)
		b.cleanupCompleted(userID, state)
		return
	}

	// Handle commands
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(message)
		case "stop":
			b.handleStop(message)
		case "commands":
			b.handleCommands(message)
		case "anime":
			b.handleAnime(ctx, message)
		case "secrets_reload":
			b.handleSecretsReload(message)
		default:
			b.sendText(message.Chat.ID, "Unknown command. Use /commands to see available commands.")
		}
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()

	// Answer the callback query to remove loading state
	b.request(tgbotapi.NewCallback(query.ID, ""))

	data := query.Data
	switch {
	case strings.HasPrefix(data, "abort:"):
		b.handleAbort(ctx, query, strings.TrimPrefix(data, "abort:"))
	case data == "anime_add":
		b.handleAnimeAddStart(query)
	case strings.HasPrefix(data, "anime_action:"):
		b.handleAnimeAction(ctx, query, strings.TrimPrefix(data, "anime_action:"))
	case strings.HasPrefix(data, "anime:"):
		b.handleAnimeChoose(ctx, query, strings.TrimPrefix(data, "anime:"))
	}
}

// cleanupCompleted removes a conversation state once its flow has finished
func (b *Bot) cleanupCompleted(userID int64, state *ConversationState) {
	if state.Step != -1 {
		return
	}
	b.statesMu.Lock()
	delete(b.states, userID)
	b.statesMu.Unlock()
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	b.states[userID] = state
	b.statesMu.Unlock()
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	delete(b.states, userID)
	b.statesMu.Unlock()
}
