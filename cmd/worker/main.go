// Package main provides a one-shot scheduler pass for external schedulers.
// Run it from crontab or a Kubernetes CronJob when the API server has
// SCHEDULER_MODE=external.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/database"
	"github.com/remindful/remindful/internal/notify"
	"github.com/remindful/remindful/internal/push"
	"github.com/remindful/remindful/internal/reminder"
	"github.com/remindful/remindful/internal/scheduler"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "remindful-worker").
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting scan pass")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	subRepo := push.NewPostgresRepository(pool)

	var transports []notify.Transport

	webPushCfg := notify.WebPushConfig{
		Subscriber:      os.Getenv("VAPID_SUBSCRIBER"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
	}
	if webPushCfg.Configured() {
		transports = append(transports, notify.NewWebPush(subRepo, webPushCfg, log))
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
		}
	}

	driver := scheduler.NewDriver(scheduler.DriverConfig{
		Reminders:  reminder.NewPostgresRepository(pool),
		Dispatcher: notify.NewDispatcher(log, transports...),
		Logger:     log,
	})

	processed, err := driver.RunScanPass(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan pass failed")
	}

	log.Info().Int("processed", processed).Msg("scan pass completed")
}
