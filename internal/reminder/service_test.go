package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo, zerolog.Nop()), repo
}

func TestService_Create_Defaults(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rem, err := svc.Create(ctx, Input{
		Title:       "Water plants",
		ScheduledAt: date("2024-01-31T09:00"),
	})
	require.NoError(t, err)

	assert.NotZero(t, rem.ID)
	assert.Equal(t, PriorityMedium, rem.Priority)
	assert.Equal(t, RepeatOnce(), rem.Repeat)
	assert.Empty(t, rem.Message)
	assert.False(t, rem.Delivered)
}

func TestService_Create_Validation(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{ScheduledAt: date("2024-01-31T09:00")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Create(ctx, Input{Title: "no time"})
	assert.ErrorIs(t, err, ErrScheduleRequired)

	_, err = svc.Create(ctx, Input{
		Title:       "bad priority",
		ScheduledAt: date("2024-01-31T09:00"),
		Priority:    Priority("urgent"),
	})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	// No rows created by failed validation.
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_Update_ResetsDelivered(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	rem, err := svc.Create(ctx, Input{
		Title:       "One shot",
		ScheduledAt: date("2024-01-01T08:00"),
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkDelivered(ctx, rem.ID))

	updated, err := svc.Update(ctx, rem.ID, Input{
		Title:       "One shot, re-armed",
		ScheduledAt: date("2024-02-01T08:00"),
		Repeat:      Repeat{RepeatDays, 1},
		Priority:    PriorityHigh,
	})
	require.NoError(t, err)

	assert.False(t, updated.Delivered, "any edit must re-arm the reminder")
	assert.Equal(t, "One shot, re-armed", updated.Title)
	assert.Equal(t, Repeat{RepeatDays, 1}, updated.Repeat)

	stored, err := repo.Get(ctx, rem.ID)
	require.NoError(t, err)
	assert.False(t, stored.Delivered)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), 42, Input{
		Title:       "missing",
		ScheduledAt: date("2024-02-01T08:00"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListDue_Boundary(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	now := date("2024-05-01T10:00")

	past := &Reminder{Title: "past", ScheduledAt: now.Add(-time.Hour), Priority: PriorityMedium, Repeat: RepeatOnce()}
	exact := &Reminder{Title: "exact", ScheduledAt: now, Priority: PriorityMedium, Repeat: RepeatOnce()}
	future := &Reminder{Title: "future", ScheduledAt: now.Add(time.Minute), Priority: PriorityMedium, Repeat: RepeatOnce()}
	fired := &Reminder{Title: "fired", ScheduledAt: now.Add(-2 * time.Hour), Priority: PriorityMedium, Repeat: RepeatOnce(), Delivered: true}

	for _, rem := range []*Reminder{past, exact, future, fired} {
		require.NoError(t, repo.Create(ctx, rem))
	}

	due, err := repo.ListDue(ctx, now)
	require.NoError(t, err)

	titles := make([]string, 0, len(due))
	for _, rem := range due {
		titles = append(titles, rem.Title)
	}
	// Ascending by scheduled time; boundary is inclusive; delivered excluded.
	assert.Equal(t, []string{"past", "exact"}, titles)
}

func TestRepository_ListDue_TieBreakByID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	at := date("2024-05-01T10:00")

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &Reminder{
			Title:       title,
			ScheduledAt: at,
			Priority:    PriorityMedium,
			Repeat:      RepeatOnce(),
		}))
	}

	due, err := repo.ListDue(ctx, at)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.True(t, due[0].ID < due[1].ID && due[1].ID < due[2].ID)
}
