package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL todo repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const todoColumns = `id, title, completed, priority, sort_order, created_at`

func scanTodo(row pgx.Row) (*Todo, error) {
	var td Todo
	err := row.Scan(&td.ID, &td.Title, &td.Completed, &td.Priority, &td.SortOrder, &td.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &td, nil
}

// List returns all todos: incomplete before complete, then by sort order,
// then newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		ORDER BY completed ASC, sort_order ASC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Todo
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *td)
	}
	return out, rows.Err()
}

// Get retrieves a todo by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	td, err := scanTodo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return td, nil
}

// Create inserts a new todo.
func (r *PostgresRepository) Create(ctx context.Context, td *Todo) error {
	query := `
		INSERT INTO todos (title, completed, priority, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		td.Title,
		td.Completed,
		td.Priority,
		td.SortOrder,
	).Scan(&td.ID, &td.CreatedAt)
}

// Apply performs a partial update, building the SET clause from the fields
// present in the update.
func (r *PostgresRepository) Apply(ctx context.Context, id int64, upd Update) (*Todo, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Completed != nil {
		add("completed", *upd.Completed)
	}
	if upd.Priority != nil {
		add("priority", *upd.Priority)
	}
	if upd.SortOrder != nil {
		add("sort_order", *upd.SortOrder)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE todos SET %s WHERE id = $%d RETURNING `+todoColumns,
		strings.Join(sets, ", "), len(args),
	)

	td, err := scanTodo(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return td, nil
}

// Delete removes a todo.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder assigns new sort orders using a single pgx batch round trip.
func (r *PostgresRepository) Reorder(ctx context.Context, items []ReorderItem) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`UPDATE todos SET sort_order = $1 WHERE id = $2`, item.SortOrder, item.ID)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}
