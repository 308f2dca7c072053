package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// PostgresAuditRepository stores the administrative audit trail.
type PostgresAuditRepository struct {
	DB *sql.DB
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository using the
// provided *sql.DB.
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{DB: db}
}

// Insert appends one audit entry.
func (r *PostgresAuditRepository) Insert(ctx context.Context, e *models.AuditEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.Actor, e.Action, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns one page of the audit trail, newest first, optionally
// filtered by exact action name. Returns the page and the total row count
// for the filter.
func (r *PostgresAuditRepository) List(ctx context.Context, page, limit int, action string) ([]models.AuditEntry, int, error) {
	var (
		total int
		err   error
	)
	if action != "" {
		err = r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM audit_log WHERE action = $1`, action).Scan(&total)
	} else {
		err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	var rows *sql.Rows
	if action != "" {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, actor, action, detail, created_at FROM audit_log
			 WHERE action = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, action, limit, (page-1)*limit)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, actor, action, detail, created_at FROM audit_log
			 ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`, limit, (page-1)*limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// ListAll returns the full audit trail oldest first, for inclusion in
// exported archives.
func (r *PostgresAuditRepository) ListAll(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, actor, action, detail, created_at FROM audit_log ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
