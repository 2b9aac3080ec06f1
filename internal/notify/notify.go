// Package notify delivers due-reminder notifications across the configured
// transports (Web Push, Telegram) with per-target failure isolation.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/reminder"
)

// DefaultBody is used when a reminder has no message.
const DefaultBody = "Reminder is due!"

// defaultSendTimeout bounds each transport so one slow channel cannot stall
// a whole scheduler pass.
const defaultSendTimeout = 10 * time.Second

// Notification is the payload delivered to every transport.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TargetResult records the outcome of delivery to a single target (one push
// endpoint, one chat). Pruned marks a push endpoint that was deregistered
// because the push service reported it permanently gone; that is not a
// delivery error.
type TargetResult struct {
	Transport string
	Target    string
	Err       error
	Pruned    bool
}

// Report collects the per-target results of one dispatch.
type Report struct {
	Results []TargetResult
}

// Delivered counts targets that received the payload.
func (r Report) Delivered() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil && !res.Pruned {
			n++
		}
	}
	return n
}

// Failed counts targets whose delivery failed.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Transport is a notification delivery channel. Send reports per-target
// outcomes and must not panic; transport-level failures belong in the
// results, never in a panic or a process-wide error.
type Transport interface {
	Name() string
	Send(ctx context.Context, n Notification) []TargetResult
}

// Dispatcher fans a due reminder out to all configured transports.
type Dispatcher struct {
	transports  []Transport
	logger      zerolog.Logger
	sendTimeout time.Duration
}

// NewDispatcher creates a dispatcher over the given transports. A dispatcher
// with no transports is valid: Dispatch becomes a no-op and the reminder
// still transitions.
func NewDispatcher(logger zerolog.Logger, transports ...Transport) *Dispatcher {
	return &Dispatcher{
		transports:  transports,
		logger:      logger,
		sendTimeout: defaultSendTimeout,
	}
}

// Dispatch delivers the reminder's notification on every transport.
// Transports run concurrently; each is bounded by the send timeout. Dispatch
// always completes: failures are recorded in the report and logged, never
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, rem *reminder.Reminder) Report {
	n := Notification{Title: rem.Title, Body: rem.Message}
	if n.Body == "" {
		n.Body = DefaultBody
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)
	for _, t := range d.transports {
		wg.Add(1)
		go func(t Transport) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()

			results := t.Send(sendCtx, n)
			mu.Lock()
			report.Results = append(report.Results, results...)
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			d.logger.Warn().
				Err(res.Err).
				Str("transport", res.Transport).
				Str("target", res.Target).
				Int64("reminder_id", rem.ID).
				Msg("notification delivery failed")
		case res.Pruned:
			d.logger.Info().
				Str("transport", res.Transport).
				Str("target", res.Target).
				Msg("dead push endpoint removed")
		}
	}
	return report
}
