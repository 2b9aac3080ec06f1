package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remindful/remindful/internal/reminder"
)

// fakeTransport records the notifications it was asked to send and returns
// canned results.
type fakeTransport struct {
	name    string
	results []TargetResult
	sent    []Notification
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Send(_ context.Context, n Notification) []TargetResult {
	f.sent = append(f.sent, n)
	return f.results
}

func testReminder(title, message string) *reminder.Reminder {
	return &reminder.Reminder{
		ID:          1,
		Title:       title,
		Message:     message,
		ScheduledAt: time.Now(),
		Repeat:      reminder.RepeatOnce(),
		Priority:    reminder.PriorityMedium,
	}
}

func TestDispatcher_DefaultBody(t *testing.T) {
	ft := &fakeTransport{name: "fake"}
	d := NewDispatcher(zerolog.Nop(), ft)

	d.Dispatch(context.Background(), testReminder("Water plants", ""))

	require.Len(t, ft.sent, 1)
	assert.Equal(t, "Water plants", ft.sent[0].Title)
	assert.Equal(t, DefaultBody, ft.sent[0].Body)
}

func TestDispatcher_MessageAsBody(t *testing.T) {
	ft := &fakeTransport{name: "fake"}
	d := NewDispatcher(zerolog.Nop(), ft)

	d.Dispatch(context.Background(), testReminder("Water plants", "the ficus too"))

	require.Len(t, ft.sent, 1)
	assert.Equal(t, "the ficus too", ft.sent[0].Body)
}

func TestDispatcher_NoTransportsIsNoop(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())

	report := d.Dispatch(context.Background(), testReminder("lonely", ""))
	assert.Empty(t, report.Results)
	assert.Zero(t, report.Failed())
}

func TestDispatcher_FailingTransportIsIsolated(t *testing.T) {
	failing := &fakeTransport{
		name:    "telegram",
		results: []TargetResult{{Transport: "telegram", Target: "123", Err: errors.New("bot api unreachable")}},
	}
	healthy := &fakeTransport{
		name:    "webpush",
		results: []TargetResult{{Transport: "webpush", Target: "https://push.example/a"}},
	}
	d := NewDispatcher(zerolog.Nop(), failing, healthy)

	report := d.Dispatch(context.Background(), testReminder("due", ""))

	assert.Len(t, healthy.sent, 1, "healthy transport still receives the payload")
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Delivered())
}

func TestReport_Counts(t *testing.T) {
	report := Report{Results: []TargetResult{
		{Transport: "webpush", Target: "a"},
		{Transport: "webpush", Target: "b", Err: errors.New("boom")},
		{Transport: "webpush", Target: "c", Pruned: true},
		{Transport: "telegram", Target: "123"},
	}}

	assert.Equal(t, 2, report.Delivered())
	assert.Equal(t, 1, report.Failed())
}
