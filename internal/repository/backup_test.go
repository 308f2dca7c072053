package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stocktrack/stockkeeper/internal/models"
)

func setupBackupMock(t *testing.T) (*PostgresBackupRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresBackupRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func backupRows(backups ...models.Backup) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "filename", "type", "status", "format",
		"file_size", "record_count", "checksum", "created_at", "creator", "encrypted", "validated"})
	for _, b := range backups {
		rows.AddRow(b.ID, b.Filename, string(b.Type), string(b.Status), string(b.Format),
			b.FileSize, b.RecordCount, b.Checksum, b.CreatedAt, b.Creator, b.Encrypted, b.Validated)
	}
	return rows
}

func TestBackupList(t *testing.T) {
	repo, mock, cleanup := setupBackupMock(t)
	defer cleanup()

	now := time.Now()
	b1 := models.Backup{ID: "b1", Filename: "backup-manual-1.zip", Type: models.Manual,
		Status: models.StatusCompleted, Format: models.FormatZip, FileSize: 1024,
		RecordCount: 10, Checksum: "abc", CreatedAt: now, Creator: "admin"}
	b2 := models.Backup{ID: "b2", Filename: "backup-automatic-1.zip", Type: models.Automatic,
		Status: models.StatusCompleted, Format: models.FormatZip, FileSize: 2048,
		RecordCount: 12, Checksum: "def", CreatedAt: now.Add(-time.Hour), Creator: "scheduler"}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM backups`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))
	mock.ExpectQuery(`SELECT id, filename, type, status, format, file_size, record_count, checksum, created_at, creator, encrypted, validated FROM backups`).
		WithArgs(10, 0).
		WillReturnRows(backupRows(b1, b2))

	backups, total, err := repo.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 23 {
		t.Errorf("total = %d; want 23", total)
	}
	if len(backups) != 2 {
		t.Fatalf("len(backups) = %d; want 2", len(backups))
	}
	if backups[0].ID != "b1" || backups[1].ID != "b2" {
		t.Errorf("unexpected order: %s, %s", backups[0].ID, backups[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBackupList_PageOffset(t *testing.T) {
	repo, mock, cleanup := setupBackupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM backups`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM backups`).
		WithArgs(5, 10).
		WillReturnRows(backupRows())

	_, _, err := repo.List(context.Background(), 3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBackupGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupBackupMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM backups WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(backupRows())

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBackupInsert(t *testing.T) {
	repo, mock, cleanup := setupBackupMock(t)
	defer cleanup()

	b := &models.Backup{ID: "b1", Filename: "f.zip", Type: models.Manual,
		Status: models.StatusInProgress, Format: models.FormatZip,
		CreatedAt: time.Now(), Creator: "admin"}

	mock.ExpectExec(`INSERT INTO backups`).
		WithArgs(b.ID, b.Filename, string(b.Type), string(b.Status), string(b.Format),
			b.FileSize, b.RecordCount, b.Checksum, b.CreatedAt, b.Creator, b.Encrypted, b.Validated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBackupDelete_NotFound(t *testing.T) {
	repo, mock, cleanup := setupBackupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM backups WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestBackupSetValidated(t *testing.T) {
	repo, mock, cleanup := setupBackupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE backups SET validated = $1, status = $2 WHERE id = $3`)).
		WithArgs(false, string(models.StatusCorrupted), "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetValidated(context.Background(), "b1", false, models.StatusCorrupted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
