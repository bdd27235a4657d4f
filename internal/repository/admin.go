package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zuschusspiloten/leadserver/internal/models"
)

// PostgresAdminRepository implements operator-credential lookups against a
// PostgreSQL database. Accounts are provisioned out-of-band.
type PostgresAdminRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAdminRepository creates a new PostgresAdminRepository with the
// given database connection.
func NewPostgresAdminRepository(db *sql.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{DB: db}
}

// GetByUsername fetches the operator with the given username. Returns
// (nil, nil) when no such operator exists.
func (r *PostgresAdminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	var lastLogin sql.NullTime
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, last_login FROM admin_users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

// UpdateLastLogin stamps the operator's last_login with the current time.
func (r *PostgresAdminRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE admin_users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
