package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// StartRetentionCleaner removes backups older than the configured per-type
// retention window, both the archive file and the catalog row. Backups that
// are still in progress are never touched. It runs until ctx is cancelled.
func StartRetentionCleaner(
	ctx context.Context,
	db *sql.DB,
	dataDir string,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanExpired(ctx, db, dataDir, log)
			}
		}
	}()
}

func cleanExpired(ctx context.Context, db *sql.DB, dataDir string, log *zap.Logger) {
	var retention models.RetentionDays
	err := db.QueryRowContext(ctx, `
		SELECT retention_manual, retention_automatic, retention_pre_restore
		  FROM backup_config WHERE id = 1
	`).Scan(&retention.Manual, &retention.Automatic, &retention.PreRestore)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		log.Error("failed to load retention config", zap.Error(err))
		return
	}

	windows := map[models.BackupType]int{
		models.Manual:     retention.Manual,
		models.Automatic:  retention.Automatic,
		models.PreRestore: retention.PreRestore,
	}
	for backupType, days := range windows {
		if days <= 0 {
			// Zero keeps backups of this type forever.
			continue
		}
		cutoff := time.Now().AddDate(0, 0, -days)

		rows, err := db.QueryContext(ctx, `
			SELECT id, filename FROM backups
			 WHERE type = $1 AND created_at < $2 AND status <> $3
		`, backupType, cutoff, models.StatusInProgress)
		if err != nil {
			log.Error("failed to list expired backups", zap.Error(err))
			continue
		}

		type expired struct{ id, filename string }
		var found []expired
		for rows.Next() {
			var e expired
			if err := rows.Scan(&e.id, &e.filename); err != nil {
				log.Error("scan expired backup", zap.Error(err))
				break
			}
			found = append(found, e)
		}
		rows.Close()

		removed := 0
		for _, e := range found {
			if err := os.Remove(filepath.Join(dataDir, e.filename)); err != nil && !os.IsNotExist(err) {
				log.Error("failed to remove backup file",
					zap.String("filename", e.filename), zap.Error(err))
				continue
			}
			if _, err := db.ExecContext(ctx, `DELETE FROM backups WHERE id = $1`, e.id); err != nil {
				log.Error("failed to delete backup row", zap.String("id", e.id), zap.Error(err))
				continue
			}
			removed++
		}
		if removed > 0 {
			log.Info("cleaned expired backups",
				zap.String("type", string(backupType)), zap.Int("removed", removed))
		}
	}
}
