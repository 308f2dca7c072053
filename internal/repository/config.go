package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// DefaultBackupConfig is returned when no config row has been saved yet.
var DefaultBackupConfig = models.BackupConfig{
	Enabled:      false,
	ScheduleTime: "03:00",
	Formats:      []models.BackupFormat{models.FormatZip},
	Retention: models.RetentionDays{
		Manual:     90,
		Automatic:  30,
		PreRestore: 7,
	},
}

// PostgresConfigRepository stores the single-row backup configuration.
type PostgresConfigRepository struct {
	DB *sql.DB
}

// NewPostgresConfigRepository creates a new PostgresConfigRepository using
// the provided *sql.DB.
func NewPostgresConfigRepository(db *sql.DB) *PostgresConfigRepository {
	return &PostgresConfigRepository{DB: db}
}

// Get loads the backup configuration. When the row has never been written,
// it returns DefaultBackupConfig rather than an error.
func (r *PostgresConfigRepository) Get(ctx context.Context) (*models.BackupConfig, error) {
	var (
		cfg     models.BackupConfig
		formats []string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT enabled, schedule_time, formats, retention_manual, retention_automatic,
		       retention_pre_restore, include_audit_logs, updated_at
		  FROM backup_config WHERE id = 1
	`).Scan(&cfg.Enabled, &cfg.ScheduleTime, pq.Array(&formats),
		&cfg.Retention.Manual, &cfg.Retention.Automatic, &cfg.Retention.PreRestore,
		&cfg.IncludeAuditLogs, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		def := DefaultBackupConfig
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup config: %w", err)
	}

	for _, f := range formats {
		cfg.Formats = append(cfg.Formats, models.BackupFormat(f))
	}
	return &cfg, nil
}

// Put upserts the backup configuration row.
func (r *PostgresConfigRepository) Put(ctx context.Context, cfg *models.BackupConfig) error {
	formats := make([]string, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		formats = append(formats, string(f))
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO backup_config (id, enabled, schedule_time, formats, retention_manual,
		       retention_automatic, retention_pre_restore, include_audit_logs, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			schedule_time = EXCLUDED.schedule_time,
			formats = EXCLUDED.formats,
			retention_manual = EXCLUDED.retention_manual,
			retention_automatic = EXCLUDED.retention_automatic,
			retention_pre_restore = EXCLUDED.retention_pre_restore,
			include_audit_logs = EXCLUDED.include_audit_logs,
			updated_at = EXCLUDED.updated_at
	`, cfg.Enabled, cfg.ScheduleTime, pq.Array(formats), cfg.Retention.Manual,
		cfg.Retention.Automatic, cfg.Retention.PreRestore, cfg.IncludeAuditLogs, time.Now())
	if err != nil {
		return fmt.Errorf("put backup config: %w", err)
	}
	return nil
}
