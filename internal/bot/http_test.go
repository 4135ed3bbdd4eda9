package bot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"animetrack/internal/config"
	"animetrack/internal/storage/stubs"
)

func newTestServer(cfg *config.Config) (*HTTPServer, *http.ServeMux) {
	b := &Bot{
		api:    nil, // no Telegram API in tests
		db:     stubs.NewMockDB(),
		cfg:    config.NewManagerFromConfig(cfg),
		states: make(map[int64]*ConversationState),
		logger: zap.NewNop(),
	}
	hs := NewHTTPServer(b)
	mux := http.NewServeMux()
	hs.RegisterRoutes(mux)
	return hs, mux
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := newTestServer(&config.Config{OwnerID: 1})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	_, mux := newTestServer(&config.Config{OwnerID: 1})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "polling")
}

func TestTelegramWebhookRejectsWrongSecret(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:        1,
		WebhookMode:    true,
		TelegramSecret: "right",
	})

	req := httptest.NewRequest(http.MethodPost, "/telegram-webhook", strings.NewReader("{}"))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "wrong")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTelegramWebhookAcceptsUpdate(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:        1,
		WebhookMode:    true,
		TelegramSecret: "right",
	})

	body := `{"update_id": 42}`
	req := httptest.NewRequest(http.MethodPost, "/telegram-webhook", strings.NewReader(body))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "right")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTelegramWebhookRejectsGet(t *testing.T) {
	_, mux := newTestServer(&config.Config{OwnerID: 1})

	req := httptest.NewRequest(http.MethodGet, "/telegram-webhook", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNotificationsRejectsWrongSecret(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:              1,
		NotificationsSecret:  "secret",
		NotificationsAllowed: []string{"backup"},
	})

	body := `{"sender": "backup", "content": {"sender": "backup", "message": "done"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/notifications", strings.NewReader(body))
	req.Header.Set("X-MyBot-Notifications-Secret-Token", "wrong")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationsRejectsWhenNoSecretConfigured(t *testing.T) {
	// An empty configured secret must refuse everything, even an empty header
	_, mux := newTestServer(&config.Config{OwnerID: 1})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/notifications", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationsRejectsUnknownSender(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:              1,
		NotificationsSecret:  "secret",
		NotificationsAllowed: []string{"backup"},
	})

	body := `{"sender": "intruder", "content": {"sender": "intruder", "message": "hi"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/notifications", strings.NewReader(body))
	req.Header.Set("X-MyBot-Notifications-Secret-Token", "secret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationsAcceptsPost(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:              1,
		NotificationsSecret:  "secret",
		NotificationsAllowed: []string{"backup"},
	})

	body := `{"sender": "backup", "content": {"sender": "backup", "message": "done", "payload": {"files": 3}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/notifications", strings.NewReader(body))
	req.Header.Set("X-MyBot-Notifications-Secret-Token", "secret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Got")
}

func TestNotificationsAcceptsGet(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:              1,
		NotificationsSecret:  "secret",
		NotificationsAllowed: []string{"backup"},
	})

	req := httptest.NewRequest(http.MethodGet, "/webhooks/notifications?secret=secret&sender=backup&message=done", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification sended", rec.Body.String())
}

func TestNotificationWithoutPayload(t *testing.T) {
	hs, _ := newTestServer(&config.Config{OwnerID: 1})

	c := hs.buildNotification(1, notificationContent{
		Sender:  "backup",
		Message: "done",
	}, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	msg, ok := c.(tgbotapi.MessageConfig)
	require.True(t, ok, "payload-less notification should be a plain message")
	assert.Equal(t, "backup:\ndone", msg.Text)
	require.Len(t, msg.Entities, 1)
	assert.Equal(t, "bold", msg.Entities[0].Type)
	assert.Equal(t, 0, msg.Entities[0].Offset)
	assert.Equal(t, len("backup:"), msg.Entities[0].Length)
}

func TestNotificationInlinePayloadEntities(t *testing.T) {
	hs, _ := newTestServer(&config.Config{OwnerID: 1})

	c := hs.buildNotification(1, notificationContent{
		Sender:  "backup",
		Message: "done",
		Payload: json.RawMessage(`{"files": 3}`),
	}, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	msg, ok := c.(tgbotapi.MessageConfig)
	require.True(t, ok, "small payload should stay inline")

	pretty := "{\n    \"files\": 3\n}"
	assert.Equal(t, "backup:\ndone\n"+pretty, msg.Text)

	require.Len(t, msg.Entities, 2)
	assert.Equal(t, "bold", msg.Entities[0].Type)
	assert.Equal(t, len("backup:"), msg.Entities[0].Length)
	assert.Equal(t, "pre", msg.Entities[1].Type)
	assert.Equal(t, "json", msg.Entities[1].Language)
	assert.Equal(t, len("backup:\ndone\n"), msg.Entities[1].Offset)
	assert.Equal(t, len(pretty), msg.Entities[1].Length)
}

func TestNotificationOversizedPayloadSentAsDocument(t *testing.T) {
	hs, _ := newTestServer(&config.Config{OwnerID: 1})

	// A JSON string payload well past the chat message limit
	payload := `"` + strings.Repeat("a", 4100) + `"`
	c := hs.buildNotification(1, notificationContent{
		Sender:  "backup",
		Message: "done",
		Payload: json.RawMessage(payload),
	}, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	doc, ok := c.(tgbotapi.DocumentConfig)
	require.True(t, ok, "oversized payload should be delivered as a document")

	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "backup_2026-08-01_12-00-00.json", file.Name)
	assert.Equal(t, payload, string(file.Bytes))

	assert.Equal(t, "backup:\ndone", doc.Caption)
	require.Len(t, doc.CaptionEntities, 1)
	assert.Equal(t, "bold", doc.CaptionEntities[0].Type)
	assert.Equal(t, len("backup:"), doc.CaptionEntities[0].Length)
}

func TestNotificationsGetRejectsWrongSecret(t *testing.T) {
	_, mux := newTestServer(&config.Config{
		OwnerID:              1,
		NotificationsSecret:  "secret",
		NotificationsAllowed: []string{"backup"},
	})

	req := httptest.NewRequest(http.MethodGet, "/webhooks/notifications?secret=wrong&sender=backup", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
