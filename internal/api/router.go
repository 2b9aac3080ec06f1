// Package api provides the HTTP API for Remindful.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/api/handler"
	"github.com/remindful/remindful/internal/api/middleware"
	"github.com/remindful/remindful/internal/push"
	"github.com/remindful/remindful/internal/reminder"
	"github.com/remindful/remindful/internal/todo"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	ReminderService *reminder.Service
	TodoService     *todo.Service
	Subscriptions   push.Repository
	ScanRunner      handler.ScanRunner
	DB              handler.Pinger

	// CronSecret guards /api/cron/check-reminders. Empty leaves it open.
	CronSecret string

	// VAPIDPublicKey is handed to web push clients. May be empty when the
	// web push transport is not configured.
	VAPIDPublicKey string

	TelegramConfigured bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)          // Generate/propagate request ID first
	r.Use(middleware.Tracing())          // Distributed tracing
	r.Use(middleware.Logger(cfg.Logger)) // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	reminderHandler := handler.NewReminderHandler(cfg.ReminderService)
	todoHandler := handler.NewTodoHandler(cfg.TodoService)
	pushHandler := handler.NewPushHandler(cfg.Subscriptions, cfg.VAPIDPublicKey)
	telegramHandler := handler.NewTelegramHandler(cfg.TelegramConfigured)
	cronHandler := handler.NewCronHandler(cfg.ScanRunner)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 120 req/min
	cronRateLimit := middleware.RateLimitByIP(middleware.CronRateLimit)         // 10 req/min

	r.Route("/api", func(r chi.Router) {
		// Ops endpoints (public, unthrottled for probes)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", reminderHandler.List)
			r.Post("/", reminderHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", reminderHandler.Update)
				r.Delete("/", reminderHandler.Delete)
			})
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			// Registered above /{id} so "reorder" is never parsed as an id.
			r.Put("/reorder/batch", todoHandler.Reorder)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)
			})
		})

		r.Route("/push", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Post("/subscribe", pushHandler.Subscribe)
			r.Get("/vapid-key", pushHandler.VAPIDKey)
		})

		r.With(standardRateLimit).Get("/telegram/status", telegramHandler.Status)

		// On-demand scan trigger for external schedulers
		r.Route("/cron", func(r chi.Router) {
			r.Use(cronRateLimit)
			r.Use(middleware.CronAuth(cfg.CronSecret))
			r.Get("/check-reminders", cronHandler.CheckReminders)
		})
	})

	return r
}
