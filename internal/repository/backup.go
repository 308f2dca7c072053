// Package repository provides persistence implementations for the backup
// catalog, configuration, audit trail, and admin accounts using a PostgreSQL
// database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PostgresBackupRepository implements backup catalog operations against a
// PostgreSQL database.
type PostgresBackupRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresBackupRepository creates a new PostgresBackupRepository using
// the provided *sql.DB.
func NewPostgresBackupRepository(db *sql.DB) *PostgresBackupRepository {
	return &PostgresBackupRepository{DB: db}
}

const backupColumns = `id, filename, type, status, format, file_size, record_count, checksum, created_at, creator, encrypted, validated`

// List returns one page of the backup catalog, newest first, along with the
// total number of rows.
//
//	ctx:   context for cancellation and deadlines
//	page:  1-based page number
//	limit: page size
func (r *PostgresBackupRepository) List(ctx context.Context, page, limit int) ([]models.Backup, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM backups`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count backups: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+backupColumns+` FROM backups
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []models.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, 0, err
		}
		backups = append(backups, b)
	}
	return backups, total, rows.Err()
}

// GetByID fetches a single backup by ID. Returns ErrNotFound when no such
// backup exists.
func (r *PostgresBackupRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+backupColumns+` FROM backups WHERE id = $1
	`, id)

	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert stores a new backup row.
func (r *PostgresBackupRepository) Insert(ctx context.Context, b *models.Backup) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO backups (`+backupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, b.ID, b.Filename, b.Type, b.Status, b.Format, b.FileSize, b.RecordCount,
		b.Checksum, b.CreatedAt, b.Creator, b.Encrypted, b.Validated)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	return nil
}

// Finalize records the outcome of writing a backup archive: file size,
// record count, checksum, and the final status.
func (r *PostgresBackupRepository) Finalize(ctx context.Context, id string, size int64, recordCount int, checksum string, status models.BackupStatus) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE backups SET file_size = $1, record_count = $2, checksum = $3, status = $4
		 WHERE id = $5
	`, size, recordCount, checksum, status, id)
	if err != nil {
		return fmt.Errorf("finalize backup: %w", err)
	}
	return nil
}

// SetValidated records a validation outcome: the validated flag and the
// resulting status (COMPLETED or CORRUPTED).
func (r *PostgresBackupRepository) SetValidated(ctx context.Context, id string, validated bool, status models.BackupStatus) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE backups SET validated = $1, status = $2 WHERE id = $3`, validated, status, id)
	if err != nil {
		return fmt.Errorf("set backup validated: %w", err)
	}
	return nil
}

// Delete removes a backup row. Returns ErrNotFound when nothing was deleted.
func (r *PostgresBackupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM backups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanBackup.
type scanner interface {
	Scan(dest ...any) error
}

func scanBackup(s scanner) (models.Backup, error) {
	var b models.Backup
	err := s.Scan(&b.ID, &b.Filename, &b.Type, &b.Status, &b.Format, &b.FileSize,
		&b.RecordCount, &b.Checksum, &b.CreatedAt, &b.Creator, &b.Encrypted, &b.Validated)
	if err == sql.ErrNoRows {
		return b, err
	}
	if err != nil {
		return b, fmt.Errorf("scan backup: %w", err)
	}
	return b, nil
}
