package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const adminKey ctxKey = "admin"

// adminHeader carries the authenticated admin login, set by the fronting
// auth layer. Session handling itself lives outside this service.
const adminHeader = "X-Admin-Login"

// AdminIdentity extracts the acting admin's login from the request and
// stores it in the context for handlers. Requests without the header are
// rejected.
func AdminIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login := r.Header.Get(adminHeader)
		if login == "" {
			http.Error(w, "admin identity required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), adminKey, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminFromContext extracts the admin login stored by AdminIdentity.
// Returns an empty string if not found.
func GetAdminFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(adminKey).(string); ok {
		return s
	}
	return ""
}
