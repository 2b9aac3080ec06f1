// Package reminder provides reminder persistence, validation, and the
// recurrence calculation used by the scheduler.
package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority indicates how prominently a reminder is shown in the client.
type Priority string

// Priority levels.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// RepeatKind is the calendar unit a repeating reminder advances by.
type RepeatKind string

// Repeat units.
const (
	RepeatNone    RepeatKind = "none"
	RepeatMinutes RepeatKind = "minutes"
	RepeatHours   RepeatKind = "hours"
	RepeatDays    RepeatKind = "days"
	RepeatWeeks   RepeatKind = "weeks"
	RepeatMonths  RepeatKind = "months"
)

// ErrInvalidRepeatSpec is returned when a serialized repeat specification
// cannot be decoded. Callers must surface it rather than fall back to "none".
var ErrInvalidRepeatSpec = errors.New("invalid repeat specification")

// Repeat is the recurrence of a reminder: a unit plus an interval count.
// The zero value is not valid; use RepeatOnce for non-repeating reminders.
type Repeat struct {
	Kind     RepeatKind
	Interval int
}

// RepeatOnce is the repeat spec of a non-repeating reminder.
func RepeatOnce() Repeat {
	return Repeat{Kind: RepeatNone}
}

// Repeating reports whether the reminder fires more than once.
func (r Repeat) Repeating() bool {
	return r.Kind != RepeatNone
}

// namedCadences maps the fixed single-interval cadence names to their unit.
var namedCadences = map[string]RepeatKind{
	"every_minute": RepeatMinutes,
	"hourly":       RepeatHours,
	"daily":        RepeatDays,
	"weekly":       RepeatWeeks,
	"monthly":      RepeatMonths,
}

// ParseRepeat decodes the wire/store form of a repeat specification:
// "none", a named cadence (every_minute, hourly, daily, weekly, monthly),
// or "custom:<N>:<unit>" with a positive N.
func ParseRepeat(s string) (Repeat, error) {
	if s == "" || s == string(RepeatNone) {
		return RepeatOnce(), nil
	}
	if kind, ok := namedCadences[s]; ok {
		return Repeat{Kind: kind, Interval: 1}, nil
	}
	rest, ok := strings.CutPrefix(s, "custom:")
	if !ok {
		return Repeat{}, fmt.Errorf("%w: %q", ErrInvalidRepeatSpec, s)
	}
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return Repeat{}, fmt.Errorf("%w: %q", ErrInvalidRepeatSpec, s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return Repeat{}, fmt.Errorf("%w: interval in %q", ErrInvalidRepeatSpec, s)
	}
	switch kind := RepeatKind(parts[1]); kind {
	case RepeatMinutes, RepeatHours, RepeatDays, RepeatWeeks, RepeatMonths:
		return Repeat{Kind: kind, Interval: n}, nil
	default:
		return Repeat{}, fmt.Errorf("%w: unit in %q", ErrInvalidRepeatSpec, s)
	}
}

// rawRepeat preserves a stored specification that could not be decoded. The
// result round-trips through String unchanged, reports Repeating, and fails
// Next with ErrInvalidRepeatSpec, so a read never rewrites a malformed spec
// and the scheduler surfaces it per row.
func rawRepeat(s string) Repeat {
	return Repeat{Kind: RepeatKind(s)}
}

// String returns the canonical wire/store form. Interval-1 specs serialize as
// their named cadence.
func (r Repeat) String() string {
	if r.Kind == RepeatNone {
		return string(RepeatNone)
	}
	if r.Interval < 1 {
		// Undecodable stored spec carried through verbatim.
		return string(r.Kind)
	}
	if r.Interval == 1 {
		for name, kind := range namedCadences {
			if kind == r.Kind {
				return name
			}
		}
	}
	return fmt.Sprintf("custom:%d:%s", r.Interval, r.Kind)
}

// Reminder is a scheduled notification.
//
// Delivered is true only for non-repeating reminders that have fired;
// repeating reminders are advanced past the fired occurrence instead and
// never carry a stale delivered state.
type Reminder struct {
	ID          int64
	Title       string
	Message     string
	ScheduledAt time.Time
	Repeat      Repeat
	Priority    Priority
	Delivered   bool
	CreatedAt   time.Time
}
