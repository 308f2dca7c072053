package http

import (
	"net/http"

	"github.com/stocktrack/stockkeeper/internal/models"
	"github.com/stocktrack/stockkeeper/internal/search"
)

// SettingsHandler serves the settings search registry and the static role
// matrix.
type SettingsHandler struct{}

// Fields handles GET /api/settings/fields requests. Without a query it
// returns the full registry; with ?q= it returns ranked results and the
// section-grouped view.
func (h *SettingsHandler) Fields(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"fields": search.Fields()})
		return
	}

	limit := queryInt(r, "limit", search.DefaultMaxResults)
	results := search.Search(q, search.Fields(), limit)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"groups":  search.GroupBySection(results),
	})
}

// Roles handles GET /api/roles requests, serving the immutable
// role-permission matrix.
func (h *SettingsHandler) Roles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"roles": models.Roles})
}
