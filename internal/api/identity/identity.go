// Package identity carries the caller's user ID through the request context.
// The ID comes from the X-User-ID header set by the upstream auth gateway;
// this service never authenticates users itself.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/albapepper/healthjournal-engagement/internal/api/respond"
)

// Header is the request header holding the authenticated user ID.
const Header = "X-User-ID"

const maxUserIDLength = 128

type ctxKey struct{}

// WithUserID returns ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the caller's user ID, "" when unresolved.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Middleware resolves the user ID from the header. Requests without one
// pass through with an empty ID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id != "" && len(id) <= maxUserIDLength {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests without a resolved user ID with 401.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing "+Header+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}
