package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	tele "gopkg.in/telebot.v4"
)

// TelegramConfig holds bot configuration for the Telegram transport.
type TelegramConfig struct {
	Token  string
	ChatID int64

	// MaxRetries bounds the exponential retry of one send. Default: 2.
	MaxRetries uint64
}

// Configured reports whether both token and chat target are present.
func (c TelegramConfig) Configured() bool {
	return c.Token != "" && c.ChatID != 0
}

// TelegramTransport sends the notification as a Markdown message to one
// configured chat. Sends are retried with exponential backoff and guarded
// by a circuit breaker so a dead Bot API endpoint stops consuming scheduler
// pass time.
type TelegramTransport struct {
	bot        *tele.Bot
	chatID     int64
	maxRetries uint64
	breaker    *gobreaker.CircuitBreaker[*tele.Message]
	logger     zerolog.Logger
}

// NewTelegram creates the Telegram transport. It validates the token
// against the Bot API, so it requires network access at construction time.
func NewTelegram(cfg TelegramConfig, logger zerolog.Logger) (*TelegramTransport, error) {
	if !cfg.Configured() {
		return nil, errors.New("telegram transport not configured")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: 8 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[*tele.Message](gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &TelegramTransport{
		bot:        bot,
		chatID:     cfg.ChatID,
		maxRetries: cfg.MaxRetries,
		breaker:    breaker,
		logger:     logger,
	}, nil
}

// Name identifies the transport in delivery reports.
func (t *TelegramTransport) Name() string { return "telegram" }

// Send delivers the notification to the configured chat.
func (t *TelegramTransport) Send(ctx context.Context, n Notification) []TargetResult {
	res := TargetResult{Transport: t.Name(), Target: strconv.FormatInt(t.chatID, 10)}

	text := fmt.Sprintf("🔔 *%s*\n%s", n.Title, n.Body)
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}

	_, err := t.breaker.Execute(func() (*tele.Message, error) {
		var msg *tele.Message
		operation := func() error {
			var sendErr error
			msg, sendErr = t.bot.Send(tele.ChatID(t.chatID), text, opts)
			return sendErr
		}

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 250 * time.Millisecond
		bo.MaxElapsedTime = 0

		retryErr := backoff.Retry(operation,
			backoff.WithContext(backoff.WithMaxRetries(bo, t.maxRetries), ctx))
		return msg, retryErr
	})
	res.Err = err
	return []TargetResult{res}
}
