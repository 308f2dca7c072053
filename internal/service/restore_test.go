package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocktrack/stockkeeper/internal/archive"
	"github.com/stocktrack/stockkeeper/internal/models"
	"github.com/stocktrack/stockkeeper/internal/repository"
)

// fakeAdminRepo serves one admin with a real bcrypt hash.
type fakeAdminRepo struct {
	login string
	hash  string
}

func newFakeAdminRepo(t *testing.T, login, password string) *fakeAdminRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &fakeAdminRepo{login: login, hash: string(hash)}
}

func (f *fakeAdminRepo) PasswordHash(ctx context.Context, login string) (string, error) {
	if login != f.login {
		return "", repository.ErrNotFound
	}
	return f.hash, nil
}

// restoreFixture wires a RestoreService around a real archive written into a
// temp data dir, with one completed backup in the fake catalog.
func restoreFixture(t *testing.T, encrypted bool) (*RestoreService, *fakeBackupRepo, *fakeItemRepo, *fakeAuditRepo, string) {
	t.Helper()
	dataDir := t.TempDir()

	exp := &archive.Export{
		Version:    archive.ExportVersion,
		ExportedAt: time.Now().UTC(),
		Items: []models.Item{
			{ID: "i1", SKU: "S1", Name: "One", Quantity: 2, UpdatedAt: time.Now().UTC()},
			{ID: "i2", SKU: "S2", Name: "Two", Quantity: 9, UpdatedAt: time.Now().UTC()},
		},
	}
	filename := archive.Filename(models.Manual, models.FormatZip, time.Now())
	_, checksum, err := archive.Write(dataDir+"/"+filename, models.FormatZip, exp)
	if err != nil {
		t.Fatalf("write archive: %v", err)
	}

	backups := newFakeBackupRepo()
	backups.rows["b1"] = &models.Backup{
		ID: "b1", Filename: filename, Type: models.Manual,
		Status: models.StatusCompleted, Format: models.FormatZip,
		RecordCount: 2, Checksum: checksum, Encrypted: encrypted,
	}

	items := &fakeItemRepo{}
	audit := &fakeAuditRepo{}
	backupSvc, err := NewBackupService(backups, items, audit, &fakeConfigRepo{}, dataDir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBackupService: %v", err)
	}
	admins := newFakeAdminRepo(t, "admin", "hunter2")
	svc := NewRestoreService(backups, items, admins, backupSvc, dataDir, zap.NewNop())
	return svc, backups, items, audit, dataDir
}

func TestRestore_Preview(t *testing.T) {
	svc, _, items, _, _ := restoreFixture(t, false)

	result, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModePreview, AdminPassword: "hunter2"}, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Preview {
		t.Error("expected a preview result")
	}
	if result.Restored != 2 {
		t.Errorf("restored = %d; want 2", result.Restored)
	}
	if len(items.merged) != 0 || len(items.replaced) != 0 {
		t.Error("preview must not write")
	}
	if items.previewOnly != 1 {
		t.Errorf("previewOnly = %d; want 1", items.previewOnly)
	}
}

func TestRestore_Merge(t *testing.T) {
	svc, _, items, audit, _ := restoreFixture(t, false)

	result, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeMerge, AdminPassword: "hunter2"}, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Preview {
		t.Error("merge is not a preview")
	}
	if len(items.merged) != 1 {
		t.Fatalf("merged calls = %d; want 1", len(items.merged))
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "backup.restore" {
		t.Errorf("audit = %+v; want one backup.restore", audit.entries)
	}
}

func TestRestore_FullTakesPreRestoreBackup(t *testing.T) {
	svc, backups, items, _, _ := restoreFixture(t, false)

	result, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeFull, AdminPassword: "hunter2"}, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PreRestoreBackupID == "" {
		t.Fatal("expected a pre-restore backup id")
	}
	pre, ok := backups.rows[result.PreRestoreBackupID]
	if !ok {
		t.Fatal("pre-restore backup not in catalog")
	}
	if pre.Type != models.PreRestore {
		t.Errorf("pre-restore type = %s; want PRE_RESTORE", pre.Type)
	}
	if len(items.replaced) != 1 {
		t.Errorf("replaced calls = %d; want 1", len(items.replaced))
	}
}

func TestRestore_WrongAdminPassword(t *testing.T) {
	svc, _, items, _, _ := restoreFixture(t, false)

	_, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeMerge, AdminPassword: "wrong"}, "admin")
	if !errors.Is(err, ErrAdminPassword) {
		t.Fatalf("err = %v; want ErrAdminPassword", err)
	}
	if len(items.merged) != 0 {
		t.Error("failed gate must not write")
	}
}

func TestRestore_MissingAdminPassword(t *testing.T) {
	svc, _, _, _, _ := restoreFixture(t, false)

	_, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeMerge}, "admin")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v; want ValidationError", err)
	}
}

func TestRestore_EncryptedRequiresPassword(t *testing.T) {
	svc, _, _, _, _ := restoreFixture(t, true)

	_, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeMerge, AdminPassword: "hunter2"}, "admin")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v; want ValidationError for missing password", err)
	}

	// With a password the same request goes through.
	_, err = svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeMerge, Password: "pw", AdminPassword: "hunter2"}, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRestore_NotRestorableStatus(t *testing.T) {
	svc, backups, _, _, _ := restoreFixture(t, false)
	backups.rows["b1"].Status = models.StatusCorrupted

	_, err := svc.Restore(context.Background(), "b1",
		models.RestoreOptions{Mode: models.ModeMerge, AdminPassword: "hunter2"}, "admin")
	if !errors.Is(err, ErrBackupNotRestorable) {
		t.Fatalf("err = %v; want ErrBackupNotRestorable", err)
	}
}

func TestRestore_UnknownBackup(t *testing.T) {
	svc, _, _, _, _ := restoreFixture(t, false)

	_, err := svc.Restore(context.Background(), "nope",
		models.RestoreOptions{Mode: models.ModeMerge, AdminPassword: "hunter2"}, "admin")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
