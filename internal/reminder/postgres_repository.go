package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reminder repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reminderColumns = `id, title, message, scheduled_at, repeat, priority, delivered, created_at`

func scanReminder(row pgx.Row) (*Reminder, error) {
	var (
		rem       Reminder
		repeatStr string
	)
	err := row.Scan(
		&rem.ID,
		&rem.Title,
		&rem.Message,
		&rem.ScheduledAt,
		&repeatStr,
		&rem.Priority,
		&rem.Delivered,
		&rem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rem.Repeat, err = ParseRepeat(repeatStr)
	if err != nil {
		// One malformed stored spec must not abort the whole read; carry
		// it verbatim and let the scheduler isolate the row.
		rem.Repeat = rawRepeat(repeatStr)
	}
	return &rem, nil
}

func collectReminders(rows pgx.Rows) ([]Reminder, error) {
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rem)
	}
	return out, rows.Err()
}

// List returns all reminders ordered by scheduled time ascending.
func (r *PostgresRepository) List(ctx context.Context) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders ORDER BY scheduled_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// Get retrieves a reminder by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`

	rem, err := scanReminder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rem, nil
}

// Create inserts a new reminder.
func (r *PostgresRepository) Create(ctx context.Context, rem *Reminder) error {
	query := `
		INSERT INTO reminders (title, message, scheduled_at, repeat, priority, delivered)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		rem.Title,
		rem.Message,
		rem.ScheduledAt,
		rem.Repeat.String(),
		rem.Priority,
		rem.Delivered,
	).Scan(&rem.ID, &rem.CreatedAt)
}

// Update replaces the editable fields of an existing reminder.
func (r *PostgresRepository) Update(ctx context.Context, rem *Reminder) error {
	query := `
		UPDATE reminders
		SET title = $1, message = $2, scheduled_at = $3, repeat = $4, priority = $5, delivered = $6
		WHERE id = $7
	`

	tag, err := r.pool.Exec(ctx, query,
		rem.Title,
		rem.Message,
		rem.ScheduledAt,
		rem.Repeat.String(),
		rem.Priority,
		rem.Delivered,
		rem.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a reminder.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDue returns undelivered reminders whose scheduled time has passed,
// oldest first.
func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE scheduled_at <= $1 AND delivered = FALSE
		ORDER BY scheduled_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// MarkDelivered sets the delivered flag after a one-shot reminder fires.
func (r *PostgresRepository) MarkDelivered(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reminders SET delivered = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reschedule advances a repeating reminder to its next occurrence.
func (r *PostgresRepository) Reschedule(ctx context.Context, id int64, next time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reminders SET scheduled_at = $1 WHERE id = $2`, next, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
