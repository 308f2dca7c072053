// Package models defines the core data structures for backups, restore
// operations, configuration, and the audit trail.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BackupType identifies how a backup came to exist.
type BackupType string

const (
	// Manual backups are triggered explicitly by an administrator.
	Manual BackupType = "MANUAL"
	// Automatic backups are created by the scheduler.
	Automatic BackupType = "AUTOMATIC"
	// PreRestore backups are safety snapshots taken before a full restore.
	PreRestore BackupType = "PRE_RESTORE"
)

// BackupStatus tracks the lifecycle of a backup record.
type BackupStatus string

const (
	StatusCompleted  BackupStatus = "COMPLETED"
	StatusInProgress BackupStatus = "IN_PROGRESS"
	StatusFailed     BackupStatus = "FAILED"
	StatusCorrupted  BackupStatus = "CORRUPTED"
)

// BackupFormat selects the on-disk archive format.
type BackupFormat string

const (
	// FormatZip stores the export as a zip archive.
	FormatZip BackupFormat = "zip"
	// FormatJSONGz stores the export as gzip-compressed JSON.
	FormatJSONGz BackupFormat = "json.gz"
)

// Backup describes a stored export of application data.
type Backup struct {
	// ID is the unique identifier for the backup.
	ID string `json:"id"`
	// Filename is the archive file name under the data directory.
	Filename string `json:"filename"`
	// Type records how the backup was created.
	Type BackupType `json:"type"`
	// Status is the current lifecycle state.
	Status BackupStatus `json:"status"`
	// Format is the archive format the backup was written in.
	Format BackupFormat `json:"format"`
	// FileSize is the archive size in bytes.
	FileSize int64 `json:"fileSize"`
	// RecordCount is the number of exported records.
	RecordCount int `json:"recordCount"`
	// Checksum is the hex-encoded SHA-256 of the archive file.
	Checksum string `json:"checksum"`
	// CreatedAt is when the backup was taken.
	CreatedAt time.Time `json:"createdAt"`
	// Creator is the login of whoever (or whatever) created it.
	Creator string `json:"creator"`
	// Encrypted marks backups whose payload requires a password to restore.
	Encrypted bool `json:"encrypted"`
	// Validated is set once a validation run has confirmed integrity.
	Validated bool `json:"validated"`
}

// RestoreMode selects how a restore applies the backup contents.
type RestoreMode string

const (
	// ModePreview reports what would change without writing anything.
	ModePreview RestoreMode = "preview"
	// ModeMerge upserts records that are newer than the live ones.
	ModeMerge RestoreMode = "merge"
	// ModeFull replaces all live records with the backup contents.
	ModeFull RestoreMode = "full"
)

// RestoreOptions is the payload an administrator submits to start a restore.
type RestoreOptions struct {
	// Mode selects preview, merge, or full.
	Mode RestoreMode `json:"mode"`
	// Password unlocks encrypted backups; required iff the backup is encrypted.
	Password string `json:"password,omitempty"`
	// AdminPassword gates the action; must match the acting admin's password.
	AdminPassword string `json:"adminPassword"`
}

// Validate checks the options against the target backup. encrypted is the
// Encrypted flag of the backup being restored.
func (o RestoreOptions) Validate(encrypted bool) error {
	switch o.Mode {
	case ModePreview, ModeMerge, ModeFull:
	default:
		return &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", o.Mode)}
	}
	if o.AdminPassword == "" {
		return &ValidationError{Field: "adminPassword", Message: "admin password is required"}
	}
	if encrypted && o.Password == "" {
		return &ValidationError{Field: "password", Message: "backup is encrypted, password is required"}
	}
	return nil
}

// RestoreResult summarizes a finished (or previewed) restore.
type RestoreResult struct {
	// Restored is the number of records written (or that would be, in preview).
	Restored int `json:"restored"`
	// Skipped is the number of records left untouched because the live copy was newer.
	Skipped int `json:"skipped"`
	// Unchanged is the number of records identical to the live copy.
	Unchanged int `json:"unchanged"`
	// Preview is true when no writes were performed.
	Preview bool `json:"preview"`
	// PreRestoreBackupID references the safety backup taken before a full restore.
	PreRestoreBackupID string `json:"preRestoreBackupId,omitempty"`
}

// ValidationResult reports the outcome of a backup integrity check.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	ChecksumOK  bool     `json:"checksumOk"`
	Readable    bool     `json:"readable"`
	RecordCount int      `json:"recordCount"`
	Issues      []string `json:"issues,omitempty"`
}

// RetentionDays holds per-type retention windows in days. Zero disables
// cleanup for that type.
type RetentionDays struct {
	Manual     int `json:"manual"`
	Automatic  int `json:"automatic"`
	PreRestore int `json:"preRestore"`
}

// BackupConfig is the single-row scheduling and retention configuration.
type BackupConfig struct {
	// Enabled turns the automatic backup scheduler on.
	Enabled bool `json:"enabled"`
	// ScheduleTime is the daily wall-clock trigger, "HH:MM" 24h format.
	ScheduleTime string `json:"scheduleTime"`
	// Formats lists the archive formats produced by scheduled backups.
	// At least one must be selected.
	Formats []BackupFormat `json:"formats"`
	// Retention holds per-type retention windows.
	Retention RetentionDays `json:"retention"`
	// IncludeAuditLogs adds the audit trail to exported archives.
	IncludeAuditLogs bool `json:"includeAuditLogs"`
	// UpdatedAt is when the config row was last written.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate performs the shape checks required before saving a config.
func (c BackupConfig) Validate() error {
	if len(c.Formats) == 0 {
		return &ValidationError{Field: "formats", Message: "at least one format must be selected"}
	}
	for _, f := range c.Formats {
		if f != FormatZip && f != FormatJSONGz {
			return &ValidationError{Field: "formats", Message: fmt.Sprintf("unknown format %q", f)}
		}
	}
	if _, _, err := ParseScheduleTime(c.ScheduleTime); err != nil {
		return err
	}
	if c.Retention.Manual < 0 || c.Retention.Automatic < 0 || c.Retention.PreRestore < 0 {
		return &ValidationError{Field: "retention", Message: "retention days cannot be negative"}
	}
	return nil
}

// ParseScheduleTime parses an "HH:MM" schedule into hour and minute.
func ParseScheduleTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, &ValidationError{Field: "scheduleTime", Message: fmt.Sprintf("%q is not HH:MM", s)}
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, &ValidationError{Field: "scheduleTime", Message: fmt.Sprintf("%q is not HH:MM", s)}
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &ValidationError{Field: "scheduleTime", Message: fmt.Sprintf("%q is not HH:MM", s)}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, &ValidationError{Field: "scheduleTime", Message: fmt.Sprintf("%q is out of range", s)}
	}
	return hour, minute, nil
}

// Item is a single inventory record, the unit of export and restore.
type Item struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
	// UpdatedAt decides merge conflicts: the newer record wins.
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuditEntry is one row of the administrative audit trail.
type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination describes a page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ValidationError is a client-side (pre-network) input failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Role pairs a role name with the permissions it grants. The role matrix is
// an immutable table loaded once at start.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Roles is the static mapping from role name to granted permissions.
var Roles = []Role{
	{Name: "admin", Permissions: []string{
		"settings.read", "settings.write",
		"backups.read", "backups.create", "backups.restore", "backups.delete",
		"users.read", "users.write", "audit.read",
	}},
	{Name: "manager", Permissions: []string{
		"settings.read", "backups.read", "backups.create", "users.read", "audit.read",
	}},
	{Name: "operator", Permissions: []string{
		"settings.read", "backups.read",
	}},
	{Name: "viewer", Permissions: []string{
		"settings.read",
	}},
}
