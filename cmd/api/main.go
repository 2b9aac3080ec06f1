// Package main provides the entrypoint for the Remindful API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/api"
	"github.com/remindful/remindful/internal/database"
	"github.com/remindful/remindful/internal/notify"
	"github.com/remindful/remindful/internal/push"
	"github.com/remindful/remindful/internal/reminder"
	"github.com/remindful/remindful/internal/scheduler"
	"github.com/remindful/remindful/internal/telemetry"
	"github.com/remindful/remindful/internal/todo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "remindful-api"

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Remindful API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database schema")
	}

	// Initialize repositories and services
	reminderRepo := reminder.NewPostgresRepository(pool)
	reminderService := reminder.NewService(reminderRepo, log)
	log.Info().Msg("reminder service initialized")

	todoRepo := todo.NewPostgresRepository(pool)
	todoService := todo.NewService(todoRepo, log)
	log.Info().Msg("todo service initialized")

	subRepo := push.NewPostgresRepository(pool)

	// Assemble notification transports from whatever is configured
	var transports []notify.Transport

	webPushCfg := notify.WebPushConfig{
		Subscriber:      os.Getenv("VAPID_SUBSCRIBER"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
	}
	if webPushCfg.Configured() {
		transports = append(transports, notify.NewWebPush(subRepo, webPushCfg, log))
		log.Info().Msg("web push transport initialized")
	} else {
		log.Warn().Msg("VAPID keys not configured - web push disabled")
	}

	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	telegramCfg := notify.TelegramConfig{
		Token:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID: chatID,
	}
	if telegramCfg.Configured() {
		tg, tgErr := notify.NewTelegram(telegramCfg, log)
		if tgErr != nil {
			log.Error().Err(tgErr).Msg("failed to initialize telegram transport")
		} else {
			transports = append(transports, tg)
			log.Info().Int64("chat_id", telegramCfg.ChatID).Msg("telegram transport initialized")
		}
	} else {
		log.Warn().Msg("telegram not configured - bot notifications disabled")
	}

	dispatcher := notify.NewDispatcher(log, transports...)

	// Scheduler driver serves both the periodic timer and the cron endpoint
	driver := scheduler.NewDriver(scheduler.DriverConfig{
		Reminders:  reminderRepo,
		Dispatcher: dispatcher,
		Logger:     log,
	})

	// SCHEDULER_MODE=external disables the in-process timer; an outside
	// scheduler then drives passes through /api/cron/check-reminders.
	if os.Getenv("SCHEDULER_MODE") != "external" {
		if err := driver.StartPeriodic(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start periodic scheduler")
		}
		defer driver.Stop()
	} else {
		log.Info().Msg("periodic scheduler disabled, expecting external trigger")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ReminderService:    reminderService,
		TodoService:        todoService,
		Subscriptions:      subRepo,
		ScanRunner:         driver,
		DB:                 pool,
		CronSecret:         os.Getenv("CRON_SECRET"),
		VAPIDPublicKey:     webPushCfg.VAPIDPublicKey,
		TelegramConfigured: telegramCfg.Configured(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
