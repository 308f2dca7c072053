// Package http provides HTTP routing and middleware configuration for the
// admin API.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/stocktrack/stockkeeper/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the admin
// API. It applies JSON content-type enforcement, request logging, and admin
// identity propagation, and mounts the backup, settings, and audit endpoints
// under /api.
//
// Routes:
//
//	GET    /api/backup/list          → backupHandler.List
//	POST   /api/backup/create        → backupHandler.Create
//	POST   /api/backup/restore       → backupHandler.Restore
//	POST   /api/backup/validate      → backupHandler.Validate
//	GET    /api/backup/config        → backupHandler.GetConfig
//	PUT    /api/backup/config        → backupHandler.PutConfig
//	GET    /api/backup/download/{id} → backupHandler.Download
//	GET    /api/backup/{id}          → backupHandler.Get
//	DELETE /api/backup/{id}          → backupHandler.Delete
//	GET    /api/audit/list           → backupHandler.ListAudit
//	GET    /api/settings/fields      → settingsHandler.Fields
//	GET    /api/roles                → settingsHandler.Roles
func NewRouter(
	backupHandler *BackupHandler,
	settingsHandler *SettingsHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Propagate the acting admin's identity
	r.Use(middleware.AdminIdentity)

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/backup", func(r chi.Router) {
			r.Get("/list", backupHandler.List)
			r.Post("/create", backupHandler.Create)
			r.Post("/restore", backupHandler.Restore)
			r.Post("/validate", backupHandler.Validate)
			r.Get("/config", backupHandler.GetConfig)
			r.Put("/config", backupHandler.PutConfig)
			r.Get("/download/{id}", backupHandler.Download)
			r.Get("/{id}", backupHandler.Get)
			r.Delete("/{id}", backupHandler.Delete)
		})

		r.Get("/audit/list", backupHandler.ListAudit)
		r.Get("/settings/fields", settingsHandler.Fields)
		r.Get("/roles", settingsHandler.Roles)
	})

	return r
}
