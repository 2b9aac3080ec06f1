package reminder

import (
	"errors"
	"fmt"
	"time"
)

// ErrNonRepeating is returned by Next for a "none" repeat spec. The caller
// must mark the reminder delivered instead of rescheduling it.
var ErrNonRepeating = errors.New("reminder does not repeat")

// Next returns the occurrence following from, advancing by exactly
// Interval units. Minutes and hours use fixed durations; days and weeks use
// calendar days; months use time.AddDate, which normalizes overflow
// (Jan 31 + 1 month = Mar 2 or Mar 3) rather than clamping to month end.
//
// Pure function: same inputs always yield the same output.
func (r Repeat) Next(from time.Time) (time.Time, error) {
	if r.Kind == RepeatNone {
		return time.Time{}, ErrNonRepeating
	}
	if r.Interval <= 0 {
		return time.Time{}, fmt.Errorf("%w: interval %d", ErrInvalidRepeatSpec, r.Interval)
	}
	switch r.Kind {
	case RepeatMinutes:
		return from.Add(time.Duration(r.Interval) * time.Minute), nil
	case RepeatHours:
		return from.Add(time.Duration(r.Interval) * time.Hour), nil
	case RepeatDays:
		return from.AddDate(0, 0, r.Interval), nil
	case RepeatWeeks:
		return from.AddDate(0, 0, 7*r.Interval), nil
	case RepeatMonths:
		return from.AddDate(0, r.Interval, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unit %q", ErrInvalidRepeatSpec, r.Kind)
	}
}
