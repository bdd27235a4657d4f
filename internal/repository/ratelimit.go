package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRateLimitRepository stores sliding-window rate-limit records in a
// PostgreSQL database.
type PostgresRateLimitRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRateLimitRepository creates a new PostgresRateLimitRepository
// with the given database connection.
func NewPostgresRateLimitRepository(db *sql.DB) *PostgresRateLimitRepository {
	return &PostgresRateLimitRepository{DB: db}
}

// DeleteExpired prunes every record older than windowSeconds, regardless of
// IP or action. Called lazily at the start of each check.
func (r *PostgresRateLimitRepository) DeleteExpired(ctx context.Context, windowSeconds int) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM rate_limits WHERE created_at < NOW() - make_interval(secs => $1)
	`, windowSeconds)
	if err != nil {
		return fmt.Errorf("delete expired rate limits: %w", err)
	}
	return nil
}

// CountByIPAction returns the number of live records for the IP/action pair.
func (r *PostgresRateLimitRepository) CountByIPAction(ctx context.Context, ip, action string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rate_limits WHERE ip_address = $1 AND action = $2
	`, ip, action).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rate limits: %w", err)
	}
	return count, nil
}

// Insert records one attempt for the IP/action pair.
func (r *PostgresRateLimitRepository) Insert(ctx context.Context, ip, action string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO rate_limits (ip_address, action) VALUES ($1, $2)
	`, ip, action)
	if err != nil {
		return fmt.Errorf("insert rate limit: %w", err)
	}
	return nil
}
