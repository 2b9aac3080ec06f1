package push

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL subscription repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns all registered subscriptions ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]Subscription, error) {
	query := `SELECT id, endpoint, p256dh, auth, created_at FROM push_subscriptions ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Save registers a subscription, replacing keys on endpoint conflict.
func (r *PostgresRepository) Save(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO push_subscriptions (endpoint, p256dh, auth)
		VALUES ($1, $2, $3)
		ON CONFLICT (endpoint) DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query, sub.Endpoint, sub.P256dh, sub.Auth).
		Scan(&sub.ID, &sub.CreatedAt)
}

// DeleteByEndpoint removes the registration for an endpoint.
func (r *PostgresRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
