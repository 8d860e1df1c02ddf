// Package middleware provides HTTP middlewares for owner identification,
// request logging and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// OwnerHeader carries the device-generated owner id.
const OwnerHeader = "X-Owner-ID"

// OwnerID is a middleware that identifies the data owner of a request.
//
// The owner id is taken from the X-Owner-ID header and stored in the request
// context. It identifies whose snapshot is addressed; it does not
// authenticate the caller. /health is served without an owner.
func OwnerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			http.Error(w, "missing owner id", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerIDFromContext extracts the owner id stored by OwnerID.
// Returns an empty string if not found.
func GetOwnerIDFromContext(ctx context.Context) string {
	val := ctx.Value(ownerKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithOwnerID returns a copy of ctx carrying owner, as OwnerID would.
func WithOwnerID(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}
