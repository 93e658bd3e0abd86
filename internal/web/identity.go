package web

import (
	"context"
	"net/http"
)

type contextKey string

const userContextKey contextKey = "user_id"

// WithUser attaches the acting user to every request. The journal has a
// single demo user; handlers still read it from the context so identity can
// later come from real authentication without touching them.
func WithUser(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), userContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the acting user, or 0 if none was attached.
func UserFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userContextKey).(int64)
	return id
}
