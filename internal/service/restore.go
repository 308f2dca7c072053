package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocktrack/stockkeeper/internal/archive"
	"github.com/stocktrack/stockkeeper/internal/models"
	"github.com/stocktrack/stockkeeper/internal/repository"
)

// ErrAdminPassword is returned when the admin password gate fails.
var ErrAdminPassword = errors.New("admin password is incorrect")

// ErrBackupNotRestorable is returned when the target backup cannot be
// restored from (failed, corrupted, or still being written).
var ErrBackupNotRestorable = errors.New("backup is not restorable")

// AdminRepository reads admin accounts for the password gate.
type AdminRepository interface {
	// PasswordHash returns the stored bcrypt hash for a login, or
	// repository.ErrNotFound.
	PasswordHash(ctx context.Context, login string) (string, error)
}

// RestoreService applies backup archives back onto the live data set under
// one of three modes: preview, merge, or full.
type RestoreService struct {
	backups BackupRepository
	items   ItemRepository
	admins  AdminRepository
	backup  *BackupService
	dataDir string
	log     *zap.Logger
}

// NewRestoreService constructs a RestoreService. backup is used to take the
// pre-restore safety backup before a full restore.
func NewRestoreService(
	backups BackupRepository,
	items ItemRepository,
	admins AdminRepository,
	backup *BackupService,
	dataDir string,
	log *zap.Logger,
) *RestoreService {
	return &RestoreService{
		backups: backups,
		items:   items,
		admins:  admins,
		backup:  backup,
		dataDir: dataDir,
		log:     log,
	}
}

// Restore loads the identified backup and applies it according to the
// options. actor is the authenticated admin whose password must match
// opts.AdminPassword. Exactly one of three things happens: a preview report
// (no writes), a merge (newer records win), or a full replacement preceded
// by a pre-restore safety backup.
func (s *RestoreService) Restore(ctx context.Context, backupID string, opts models.RestoreOptions, actor string) (*models.RestoreResult, error) {
	b, err := s.backups.GetByID(ctx, backupID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrBackupNotRestorable, b.Status)
	}
	if err := opts.Validate(b.Encrypted); err != nil {
		return nil, err
	}
	if err := s.verifyAdmin(ctx, actor, opts.AdminPassword); err != nil {
		return nil, err
	}

	exp, err := archive.Read(filepath.Join(s.dataDir, b.Filename), b.Format)
	if err != nil {
		return nil, fmt.Errorf("read backup archive: %w", err)
	}

	result := &models.RestoreResult{}
	switch opts.Mode {
	case models.ModePreview:
		restored, skipped, unchanged, err := s.items.PreviewMerge(ctx, exp.Items)
		if err != nil {
			return nil, err
		}
		result.Restored = restored
		result.Skipped = skipped
		result.Unchanged = unchanged
		result.Preview = true

	case models.ModeMerge:
		restored, skipped, unchanged, err := s.items.MergeNewer(ctx, exp.Items)
		if err != nil {
			return nil, err
		}
		result.Restored = restored
		result.Skipped = skipped
		result.Unchanged = unchanged
		s.backup.recordAudit(ctx, actor, "backup.restore",
			fmt.Sprintf("merge from %s: %d restored, %d skipped", b.Filename, restored, skipped))

	case models.ModeFull:
		// Safety snapshot of the live data before it is replaced.
		pre, err := s.backup.Create(ctx, models.PreRestore, b.Format, actor)
		if err != nil {
			return nil, fmt.Errorf("pre-restore backup: %w", err)
		}
		result.PreRestoreBackupID = pre.ID

		n, err := s.items.ReplaceAll(ctx, exp.Items)
		if err != nil {
			return nil, err
		}
		result.Restored = n
		s.backup.recordAudit(ctx, actor, "backup.restore",
			fmt.Sprintf("full restore from %s: %d records", b.Filename, n))
	}

	s.log.Info("restore finished",
		zap.String("backup", backupID),
		zap.String("mode", string(opts.Mode)),
		zap.Int("restored", result.Restored),
		zap.Int("skipped", result.Skipped),
		zap.Bool("preview", result.Preview))
	return result, nil
}

// verifyAdmin checks the supplied password against the stored bcrypt hash
// for the acting admin.
func (s *RestoreService) verifyAdmin(ctx context.Context, login, password string) error {
	hash, err := s.admins.PasswordHash(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAdminPassword
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrAdminPassword
	}
	return nil
}
