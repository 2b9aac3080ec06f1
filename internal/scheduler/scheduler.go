// Package scheduler owns the due-reminder scan-dispatch-update pass and its
// two triggering modes: an in-process per-minute cron and an externally
// invoked single pass.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/notify"
	"github.com/remindful/remindful/internal/reminder"
)

// Dispatcher delivers a due reminder's notification. Implementations must
// complete without error; per-target failures belong in the report.
type Dispatcher interface {
	Dispatch(ctx context.Context, rem *reminder.Reminder) notify.Report
}

// DriverConfig holds the collaborators of a Driver.
type DriverConfig struct {
	Reminders  reminder.Repository
	Dispatcher Dispatcher
	Logger     zerolog.Logger

	// Clock overrides the pass timestamp source. Default: time.Now.
	Clock func() time.Time
}

// Driver runs scheduler passes. Every pass is safe to run standalone: it
// carries no history from prior invocations, so the same entry point serves
// the periodic timer and one-shot external triggers.
type Driver struct {
	reminders  reminder.Repository
	dispatcher Dispatcher
	logger     zerolog.Logger
	clock      func() time.Time

	// mu serializes passes so overlapping triggers cannot race a
	// read-before-write on the same due set.
	mu sync.Mutex

	cron *cron.Cron
}

// NewDriver creates a scheduler driver.
func NewDriver(cfg DriverConfig) *Driver {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Driver{
		reminders:  cfg.Reminders,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		clock:      clock,
	}
}

// RunScanPass executes one complete pass: scan due reminders, dispatch each
// one, and apply its post-fire state transition. It returns the number of
// due reminders scanned.
//
// A failure while processing one reminder is logged and does not stop the
// pass; only a scan failure fails the whole pass.
func (d *Driver) RunScanPass(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// One timestamp for the whole pass: reminders becoming due mid-pass
	// wait for the next one.
	now := d.clock()

	due, err := d.reminders.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("scan due reminders: %w", err)
	}

	for i := range due {
		d.processReminder(ctx, &due[i])
	}

	if len(due) > 0 {
		d.logger.Info().
			Int("processed", len(due)).
			Time("pass_at", now).
			Msg("scan pass completed")
	}
	return len(due), nil
}

// processReminder dispatches one due reminder and transitions its state:
// non-repeating reminders are marked delivered, repeating ones are advanced
// to their next occurrence with delivered left false.
func (d *Driver) processReminder(ctx context.Context, rem *reminder.Reminder) {
	report := d.dispatcher.Dispatch(ctx, rem)

	d.logger.Debug().
		Int64("reminder_id", rem.ID).
		Int("delivered", report.Delivered()).
		Int("failed", report.Failed()).
		Msg("reminder dispatched")

	if !rem.Repeat.Repeating() {
		if err := d.reminders.MarkDelivered(ctx, rem.ID); err != nil {
			d.logger.Error().Err(err).Int64("reminder_id", rem.ID).Msg("failed to mark reminder delivered")
		}
		return
	}

	next, err := rem.Repeat.Next(rem.ScheduledAt)
	if err != nil {
		// Malformed repeat specs are surfaced, never coerced to one-shot.
		d.logger.Error().Err(err).Int64("reminder_id", rem.ID).Msg("cannot compute next occurrence")
		return
	}
	if err := d.reminders.Reschedule(ctx, rem.ID, next); err != nil {
		d.logger.Error().Err(err).Int64("reminder_id", rem.ID).Msg("failed to reschedule reminder")
	}
}

// StartPeriodic begins invoking a pass once per minute until Stop is
// called. Ticks that arrive while a pass is still running are skipped.
func (d *Driver) StartPeriodic(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{d.logger})))

	_, err := c.AddFunc("* * * * *", func() {
		// RunScanPass logs its own completion; only failures are reported here.
		if _, err := d.RunScanPass(ctx); err != nil {
			d.logger.Error().Err(err).Msg("scheduled scan pass failed")
		}
	})
	if err != nil {
		return fmt.Errorf("register cron entry: %w", err)
	}

	c.Start()
	d.cron = c
	d.logger.Info().Msg("periodic scheduler started, checking every minute")
	return nil
}

// Stop halts the periodic timer and waits for an in-flight pass to finish.
func (d *Driver) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

// cronLogger adapts zerolog to the cron.Logger interface.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
