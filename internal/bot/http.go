package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	telegramSecretHeader      = "X-Telegram-Bot-Api-Secret-Token"
	notificationsSecretHeader = "X-MyBot-Notifications-Secret-Token"

	// Telegram rejects longer messages; bigger payloads go out as documents
	maxNotificationChars = 4000
)

// HTTPServer handles webhook and notification-relay requests
type HTTPServer struct {
	bot *Bot
}

// NewHTTPServer creates a new HTTP server for webhooks and notifications
func NewHTTPServer(bot *Bot) *HTTPServer {
	return &HTTPServer{bot: bot}
}

// RegisterRoutes registers all routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/", hs.handleRoot)
	mux.HandleFunc("/telegram-webhook", hs.handleTelegramWebhook)
	mux.HandleFunc("/webhooks/notifications", hs.handleNotifications)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (hs *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	mode := "polling"
	if hs.bot.cfg.Current().WebhookMode {
		mode = "webhook"
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "animetrack bot is running (mode: %s)", mode)
}

// handleTelegramWebhook receives updates pushed by Telegram
func (hs *HTTPServer) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cfg := hs.bot.cfg.Current()
	if cfg.WebhookMode && r.Header.Get(telegramSecretHeader) != cfg.TelegramSecret {
		hs.bot.logger.Error("Telegram webhook secrets don't match")
		http.Error(w, `{"detail":"NOT VERIFIED"}`, http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.bot.logger.Error("Error decoding webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Process update in background to respond quickly to Telegram
	go hs.bot.HandleWebhookUpdate(update)

	w.WriteHeader(http.StatusOK)
}

// notificationContent is the inner payload other services send for relay
type notificationContent struct {
	Sender  string          `json:"sender"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

type notificationRequest struct {
	Sender  string              `json:"sender"`
	Content notificationContent `json:"content"`
}

// handleNotifications relays messages from other services to the owner's chat
func (hs *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		hs.handleNotificationsPost(w, r)
	case http.MethodGet:
		hs.handleNotificationsGet(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (hs *HTTPServer) handleNotificationsPost(w http.ResponseWriter, r *http.Request) {
	cfg := hs.bot.cfg.Current()

	if cfg.NotificationsSecret == "" || r.Header.Get(notificationsSecretHeader) != cfg.NotificationsSecret {
		hs.bot.logger.Error("Notification secrets don't match")
		http.Error(w, `{"detail":"NOT VERIFIED"}`, http.StatusUnauthorized)
		return
	}

	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		hs.bot.logger.Warn("Failed to decode notification body", zap.Error(err))
		http.Error(w, `{"detail":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if !cfg.SenderAllowed(req.Sender) {
		hs.bot.logger.Error("Notification sender not allowed", zap.String("sender", req.Sender))
		http.Error(w, `{"detail":"NOT ALLOWED"}`, http.StatusUnauthorized)
		return
	}

	hs.relayNotification(cfg.OwnerID, req.Content)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"description": "Got"})
}

func (hs *HTTPServer) handleNotificationsGet(w http.ResponseWriter, r *http.Request) {
	cfg := hs.bot.cfg.Current()

	query := r.URL.Query()
	if cfg.NotificationsSecret == "" || query.Get("secret") != cfg.NotificationsSecret {
		hs.bot.logger.Error("Notification secrets don't match")
		http.Error(w, `{"detail":"NOT VERIFIED"}`, http.StatusUnauthorized)
		return
	}

	sender := query.Get("sender")
	if !cfg.SenderAllowed(sender) {
		hs.bot.logger.Error("Notification sender not allowed", zap.String("sender", sender))
		http.Error(w, `{"detail":"NOT ALLOWED"}`, http.StatusUnauthorized)
		return
	}

	hs.relayNotification(cfg.OwnerID, notificationContent{
		Sender:  sender,
		Message: query.Get("message"),
	})

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Notification sended")
}

// relayNotification formats and delivers one notification
func (hs *HTTPServer) relayNotification(ownerID int64, content notificationContent) {
	hs.bot.send(hs.buildNotification(ownerID, content, time.Now().UTC()))
}

// buildNotification formats one notification for delivery. Small payloads go
// inline as a pre-formatted code block; anything that would overflow a chat
// message is attached as a JSON document instead.
func (hs *HTTPServer) buildNotification(ownerID int64, content notificationContent, now time.Time) tgbotapi.Chattable {
	header := content.Sender + ":"
	text := header + "\n" + content.Message
	msgEntities := []tgbotapi.MessageEntity{
		{Type: "bold", Offset: 0, Length: utf16Len(header)},
	}

	if len(content.Payload) == 0 || string(content.Payload) == "null" {
		msg := tgbotapi.NewMessage(ownerID, text)
		msg.Entities = msgEntities
		return msg
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, content.Payload, "", "    "); err != nil {
		hs.bot.logger.Warn("Failed to format notification payload", zap.Error(err))
		pretty.Reset()
		pretty.Write(content.Payload)
	}
	payload := pretty.String()

	if len([]rune(content.Sender+content.Message+payload)) > maxNotificationChars {
		file := tgbotapi.FileBytes{
			Name:  fmt.Sprintf("%s_%s.json", content.Sender, now.Format("2006-01-02_15-04-05")),
			Bytes: []byte(payload),
		}
		doc := tgbotapi.NewDocument(ownerID, file)
		doc.Caption = text
		doc.CaptionEntities = msgEntities
		return doc
	}

	preOffset := utf16Len(text + "\n")
	msg := tgbotapi.NewMessage(ownerID, text+"\n"+payload)
	msg.Entities = append(msgEntities, tgbotapi.MessageEntity{
		Type:     "pre",
		Offset:   preOffset,
		Length:   utf16Len(payload),
		Language: "json",
	})
	return msg
}
