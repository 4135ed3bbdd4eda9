package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"animetrack/internal/bot"
	"animetrack/internal/config"
	"animetrack/internal/jobs"
	"animetrack/internal/mal"
	"animetrack/internal/storage"
	"animetrack/internal/storage/ch"
	"animetrack/internal/storage/stubs"
)

// App represents the application
type App struct {
	cfg     *config.Manager
	db      storage.Storage
	catalog *mal.Client
	bot     *bot.Bot
	job     *jobs.AnimeJob
	server  *http.Server
	logger  *zap.Logger
}

// New creates and initializes a new application instance
func New() (*App, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Manager loads .env itself, so configuration works the same at startup
	// and on /secrets_reload
	cfg, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	app := &App{cfg: cfg, logger: logger}

	logger.Info("Starting anime tracking bot")

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initBot(); err != nil {
		return nil, err
	}

	app.initJob()
	app.initHTTPServer()

	return app, nil
}

// initDatabase initializes the database connection
func (a *App) initDatabase() error {
	cfg := a.cfg.Current()

	var db storage.Storage
	if cfg.UseMockDB {
		a.logger.Info("Using mock database")
		db = stubs.NewMockDB()
	} else {
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", cfg.ClickHouseHost),
			zap.Int("port", cfg.ClickHousePort),
			zap.String("database", cfg.ClickHouseDatabase),
			zap.String("user", cfg.ClickHouseUser),
			zap.Bool("tls", cfg.ClickHouseUseTLS),
		)
		clickhouseDB, err := ch.NewClickHouseDB(
			cfg.ClickHouseHost,
			cfg.ClickHousePort,
			cfg.ClickHouseDatabase,
			cfg.ClickHouseUser,
			cfg.ClickHousePassword,
			cfg.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		db = clickhouseDB
	}

	if err := db.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	cfg := a.cfg.Current()
	a.catalog = mal.NewClient(cfg.MALAPIURL, cfg.MALHeader, cfg.MALClientID, a.logger)

	telegramBot, err := bot.NewBot(a.cfg, a.db, a.catalog, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64("owner_id", cfg.OwnerID))

	a.bot = telegramBot
	return nil
}

// initJob wires the periodic update job. The bot doubles as the job's
// notifier so reports land in the owner's chat.
func (a *App) initJob() {
	a.job = jobs.NewAnimeJob(a.cfg.Current, a.db, a.catalog, a.bot, a.logger)
}

// initHTTPServer initializes the HTTP server for health checks, webhook
// updates and the notifications relay
func (a *App) initHTTPServer() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default port
	}

	mux := http.NewServeMux()
	bot.NewHTTPServer(a.bot).RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start HTTP server in background
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cfg := a.cfg.Current()

	// Start bot in appropriate mode
	if cfg.WebhookMode {
		a.logger.Info("Starting bot in webhook mode", zap.String("webhook_url", cfg.WebhookURL))
		if err := a.bot.StartWebhook(cfg.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
	} else {
		go func() {
			a.logger.Info("Starting bot in polling mode")
			if err := a.bot.Start(); err != nil {
				a.logger.Fatal("Failed to start bot", zap.Error(err))
			}
		}()
	}

	a.job.Start(context.Background())

	a.bot.NotifyOwner(context.Background(), "ADMIN MESSAGE\nBOT STARTED")

	// Wait for interrupt signal
	<-sigChan

	a.logger.Info("Shutting down")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	a.job.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}
