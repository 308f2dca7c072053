// Package http provides HTTP handlers for the backup catalog, restore
// operations, configuration, and the settings/admin surface.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrack/stockkeeper/internal/middleware"
	"github.com/stocktrack/stockkeeper/internal/models"
	"github.com/stocktrack/stockkeeper/internal/repository"
	"github.com/stocktrack/stockkeeper/internal/service"
)

// BackupService defines the backup catalog operations required by the HTTP
// handlers.
type BackupService interface {
	// List returns one page of backups plus pagination metadata.
	List(ctx context.Context, page, limit int) ([]models.Backup, models.Pagination, error)
	// Get fetches a single backup by ID.
	Get(ctx context.Context, id string) (*models.Backup, error)
	// Create exports the current data set into a new backup.
	Create(ctx context.Context, t models.BackupType, format models.BackupFormat, creator string) (*models.Backup, error)
	// Validate checks a stored backup's integrity.
	Validate(ctx context.Context, id string) (*models.ValidationResult, error)
	// Delete removes a backup archive and its row.
	Delete(ctx context.Context, id, actor string) error
	// ArchivePath resolves a backup to its on-disk archive for download.
	ArchivePath(ctx context.Context, id string) (*models.Backup, string, error)
	// GetConfig returns the backup configuration.
	GetConfig(ctx context.Context) (*models.BackupConfig, error)
	// PutConfig validates and saves the backup configuration.
	PutConfig(ctx context.Context, cfg *models.BackupConfig, actor string) error
	// ListAudit returns one page of the audit trail.
	ListAudit(ctx context.Context, page, limit int, action string) ([]models.AuditEntry, models.Pagination, error)
}

// RestoreService defines the restore operation required by the HTTP handlers.
type RestoreService interface {
	// Restore applies a backup under the given options for the acting admin.
	Restore(ctx context.Context, backupID string, opts models.RestoreOptions, actor string) (*models.RestoreResult, error)
}

// BackupHandler handles HTTP requests for backups, restore, and config.
type BackupHandler struct {
	BackupService  BackupService
	RestoreService RestoreService
}

// List handles GET /api/backup/list requests.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	backups, pagination, err := h.BackupService.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if backups == nil {
		backups = []models.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backups":    backups,
		"pagination": pagination,
	})
}

// Get handles GET /api/backup/{id} requests.
func (h *BackupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.BackupService.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Create handles POST /api/backup/create requests. The body may select a
// format; the default is zip, and the type is always MANUAL for API-created
// backups.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Format models.BackupFormat `json:"format"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Format == "" {
		req.Format = models.FormatZip
	}

	actor := middleware.GetAdminFromContext(r.Context())
	b, err := h.BackupService.Create(r.Context(), models.Manual, req.Format, actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Restore handles POST /api/backup/restore requests.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BackupID string `json:"backupId"`
		models.RestoreOptions
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BackupID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := middleware.GetAdminFromContext(r.Context())
	result, err := h.RestoreService.Restore(r.Context(), req.BackupID, req.RestoreOptions, actor)
	if err != nil {
		writeRestoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeRestoreError maps restore failures onto HTTP statuses.
func writeRestoreError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "backup not found")
	case errors.Is(err, service.ErrAdminPassword):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrBackupNotRestorable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Validate handles POST /api/backup/validate requests.
func (h *BackupHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BackupID string `json:"backupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BackupID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.BackupService.Validate(r.Context(), req.BackupID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Download handles GET /api/backup/download/{id} requests, streaming the
// stored archive.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, path, err := h.BackupService.ArchivePath(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := "application/zip"
	if b.Format == models.FormatJSONGz {
		contentType = "application/gzip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+b.Filename+`"`)
	http.ServeFile(w, r, path)
}

// Delete handles DELETE /api/backup/{id} requests.
func (h *BackupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := middleware.GetAdminFromContext(r.Context())

	err := h.BackupService.Delete(r.Context(), id, actor)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetConfig handles GET /api/backup/config requests.
func (h *BackupHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.BackupService.GetConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PutConfig handles PUT /api/backup/config requests.
func (h *BackupHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.BackupConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := middleware.GetAdminFromContext(r.Context())
	err := h.BackupService.PutConfig(r.Context(), &cfg, actor)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ListAudit handles GET /api/audit/list requests.
func (h *BackupHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	action := r.URL.Query().Get("action")

	entries, pagination, err := h.BackupService.ListAudit(r.Context(), page, limit, action)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": pagination,
	})
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
