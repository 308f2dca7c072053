package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresAdminRepository reads admin accounts used by the admin password
// gate.
type PostgresAdminRepository struct {
	DB *sql.DB
}

// NewPostgresAdminRepository creates a new PostgresAdminRepository using the
// provided *sql.DB.
func NewPostgresAdminRepository(db *sql.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{DB: db}
}

// PasswordHash returns the bcrypt hash stored for the given admin login.
// Returns ErrNotFound when the admin does not exist.
func (r *PostgresAdminRepository) PasswordHash(ctx context.Context, login string) (string, error) {
	var hash string
	err := r.DB.QueryRowContext(ctx,
		`SELECT password_hash FROM admins WHERE login = $1`, login).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get admin password hash: %w", err)
	}
	return hash, nil
}
