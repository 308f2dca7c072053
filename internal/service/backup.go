// Package service provides business logic for the backup lifecycle and
// restore operations, delegating persistence to repository interfaces.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocktrack/stockkeeper/internal/archive"
	"github.com/stocktrack/stockkeeper/internal/models"
	"github.com/stocktrack/stockkeeper/internal/repository"
)

// ErrNotFound is returned for operations on a backup that does not exist.
var ErrNotFound = repository.ErrNotFound

// BackupRepository defines the catalog persistence operations needed by the
// BackupService.
type BackupRepository interface {
	// List returns one page of backups, newest first, and the total count.
	List(ctx context.Context, page, limit int) ([]models.Backup, int, error)
	// GetByID fetches a single backup; repository.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Backup, error)
	// Insert stores a new backup row.
	Insert(ctx context.Context, b *models.Backup) error
	// Finalize records the write outcome (size, count, checksum, status).
	Finalize(ctx context.Context, id string, size int64, recordCount int, checksum string, status models.BackupStatus) error
	// SetValidated records a validation outcome.
	SetValidated(ctx context.Context, id string, validated bool, status models.BackupStatus) error
	// Delete removes the backup row.
	Delete(ctx context.Context, id string) error
}

// ItemRepository defines the inventory persistence operations needed for
// export and restore.
type ItemRepository interface {
	ListAll(ctx context.Context) ([]models.Item, error)
	Count(ctx context.Context) (int, error)
	MergeNewer(ctx context.Context, items []models.Item) (restored, skipped, unchanged int, err error)
	PreviewMerge(ctx context.Context, items []models.Item) (restored, skipped, unchanged int, err error)
	ReplaceAll(ctx context.Context, items []models.Item) (int, error)
}

// AuditRepository defines the audit trail operations needed by the services.
type AuditRepository interface {
	Insert(ctx context.Context, e *models.AuditEntry) error
	List(ctx context.Context, page, limit int, action string) ([]models.AuditEntry, int, error)
	ListAll(ctx context.Context) ([]models.AuditEntry, error)
}

// ConfigRepository defines the configuration persistence operations.
type ConfigRepository interface {
	Get(ctx context.Context) (*models.BackupConfig, error)
	Put(ctx context.Context, cfg *models.BackupConfig) error
}

// BackupService implements the backup catalog business logic.
type BackupService struct {
	backups BackupRepository
	items   ItemRepository
	audit   AuditRepository
	config  ConfigRepository
	dataDir string
	log     *zap.Logger
}

// NewBackupService constructs a BackupService. dataDir is created if it does
// not exist yet.
func NewBackupService(
	backups BackupRepository,
	items ItemRepository,
	audit AuditRepository,
	config ConfigRepository,
	dataDir string,
	log *zap.Logger,
) (*BackupService, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &BackupService{
		backups: backups,
		items:   items,
		audit:   audit,
		config:  config,
		dataDir: dataDir,
		log:     log,
	}, nil
}

// List returns one page of the catalog with pagination metadata. Page and
// limit are clamped to sane values (page >= 1, 1 <= limit <= 100).
func (s *BackupService) List(ctx context.Context, page, limit int) ([]models.Backup, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	backups, total, err := s.backups.List(ctx, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	totalPages := (total + limit - 1) / limit
	return backups, models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get fetches a single backup by ID.
func (s *BackupService) Get(ctx context.Context, id string) (*models.Backup, error) {
	return s.backups.GetByID(ctx, id)
}

// Create exports the current data set into a new backup archive of the given
// format. The row is inserted IN_PROGRESS first, then finalized as COMPLETED
// or FAILED once the archive write finishes.
func (s *BackupService) Create(ctx context.Context, t models.BackupType, format models.BackupFormat, creator string) (*models.Backup, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &models.Backup{
		ID:        uuid.NewString(),
		Filename:  archive.Filename(t, format, now),
		Type:      t,
		Status:    models.StatusInProgress,
		Format:    format,
		CreatedAt: now,
		Creator:   creator,
	}
	if err := s.backups.Insert(ctx, b); err != nil {
		return nil, err
	}

	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, s.failBackup(ctx, b, err)
	}

	exp := &archive.Export{
		Version:    archive.ExportVersion,
		ExportedAt: now,
		Items:      items,
	}
	if cfg.IncludeAuditLogs {
		entries, err := s.audit.ListAll(ctx)
		if err != nil {
			return nil, s.failBackup(ctx, b, err)
		}
		exp.AuditEntries = entries
	}

	size, checksum, err := archive.Write(filepath.Join(s.dataDir, b.Filename), format, exp)
	if err != nil {
		return nil, s.failBackup(ctx, b, err)
	}

	b.FileSize = size
	b.RecordCount = len(items)
	b.Checksum = checksum
	b.Status = models.StatusCompleted
	if err := s.backups.Finalize(ctx, b.ID, size, len(items), checksum, models.StatusCompleted); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, creator, "backup.create",
		fmt.Sprintf("%s backup %s (%d records)", b.Type, b.Filename, b.RecordCount))
	s.log.Info("backup created",
		zap.String("id", b.ID),
		zap.String("type", string(t)),
		zap.String("format", string(format)),
		zap.Int64("size", size),
		zap.Int("records", len(items)))
	return b, nil
}

// failBackup marks the row FAILED and returns the original error.
func (s *BackupService) failBackup(ctx context.Context, b *models.Backup, cause error) error {
	if err := s.backups.Finalize(ctx, b.ID, 0, 0, "", models.StatusFailed); err != nil {
		s.log.Error("failed to mark backup as failed", zap.String("id", b.ID), zap.Error(err))
	}
	return fmt.Errorf("create backup: %w", cause)
}

// Validate checks the integrity of a stored backup: file checksum against
// the recorded one, and archive readability. The catalog row is updated to
// reflect the outcome (validated, or CORRUPTED when the check fails).
func (s *BackupService) Validate(ctx context.Context, id string) (*models.ValidationResult, error) {
	b, err := s.backups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &models.ValidationResult{}

	checksum, err := archive.Checksum(filepath.Join(s.dataDir, b.Filename))
	if err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("archive unreadable: %v", err))
	} else if checksum != b.Checksum {
		result.Issues = append(result.Issues, "checksum mismatch")
	} else {
		result.ChecksumOK = true
	}

	exp, err := archive.Read(filepath.Join(s.dataDir, b.Filename), b.Format)
	if err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("archive undecodable: %v", err))
	} else {
		result.Readable = true
		result.RecordCount = len(exp.Items)
		if len(exp.Items) != b.RecordCount {
			result.Issues = append(result.Issues,
				fmt.Sprintf("record count mismatch: archive has %d, catalog says %d", len(exp.Items), b.RecordCount))
		}
	}

	result.Valid = result.ChecksumOK && result.Readable && len(result.Issues) == 0

	status := models.StatusCompleted
	if !result.Valid {
		status = models.StatusCorrupted
	}
	if err := s.backups.SetValidated(ctx, id, result.Valid, status); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a backup archive and its catalog row.
func (s *BackupService) Delete(ctx context.Context, id, actor string) error {
	b, err := s.backups.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dataDir, b.Filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove backup file: %w", err)
	}
	if err := s.backups.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "backup.delete", b.Filename)
	return nil
}

// ArchivePath resolves a backup ID to its catalog row and on-disk path, for
// download streaming.
func (s *BackupService) ArchivePath(ctx context.Context, id string) (*models.Backup, string, error) {
	b, err := s.backups.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return b, filepath.Join(s.dataDir, b.Filename), nil
}

// GetConfig returns the current backup configuration.
func (s *BackupService) GetConfig(ctx context.Context) (*models.BackupConfig, error) {
	return s.config.Get(ctx)
}

// PutConfig validates and saves the backup configuration.
func (s *BackupService) PutConfig(ctx context.Context, cfg *models.BackupConfig, actor string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.config.Put(ctx, cfg); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "backup.config.update",
		fmt.Sprintf("schedule %s, %d formats", cfg.ScheduleTime, len(cfg.Formats)))
	return nil
}

// ListAudit returns one page of the audit trail.
func (s *BackupService) ListAudit(ctx context.Context, page, limit int, action string) ([]models.AuditEntry, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	entries, total, err := s.audit.List(ctx, page, limit, action)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return entries, models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// recordAudit writes an audit entry, logging instead of failing the calling
// operation when the write does not succeed.
func (s *BackupService) recordAudit(ctx context.Context, actor, action, detail string) {
	entry := &models.AuditEntry{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.log.Error("failed to record audit entry",
			zap.String("action", action), zap.Error(err))
	}
}
