package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/gaia-lore/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values stored here.
type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a session token to a local user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionToken string) (*model.User, error)
}

// Authenticate is a middleware that attaches the signed-in user to the
// request context when the session cookie resolves to one.
//
// It never rejects a request: a missing or invalid session leaves the request
// anonymous. Access tiers are enforced by the RPC layer.
func Authenticate(a Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := a.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				logger.Debug("request authentication failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
