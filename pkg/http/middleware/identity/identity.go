package identity

import (
	"context"
	"net/http"
)

// The API gateway in front of this service verifies bearer tokens and
// forwards the resolved identity in these headers. The service itself never
// parses tokens.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

// Identity is the externally-verified caller identity.
type Identity struct {
	UserID string
	Email  string
}

type ctxKey struct{}

// NewIdentityMiddleware rejects requests without a verified identity with a
// 401 and stores the identity in the request context otherwise.
func NewIdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))

			return
		}

		id := Identity{
			UserID: userID,
			Email:  r.Header.Get(HeaderUserEmail),
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// FromContext returns the identity stored by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)

	return id, ok
}
