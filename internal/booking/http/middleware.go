package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/pkg/httpx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

type ctxKeyActor struct{}

// actorFromContext returns the authenticated user injected by RequireUser.
func actorFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyActor{}).(domain.User)
	return u, ok
}

// RequireUser resolves the bearer token to a full user record and stores it
// in the request context. A missing header, a bad or expired token, and a
// token whose subject no longer exists all produce the same 401; callers
// learn nothing about which check failed.
func RequireUser(tokens *service.TokenService, users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeUnauthorized(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			userID, err := tokens.VerifySession(raw)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			actor, err := users.GetUserByID(ctx, userID)
			if err != nil {
				log.Warn("session subject not resolvable", "user_id", userID)
				writeUnauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, ctxKeyActor{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a handler to superusers. It must run inside RequireUser.
func RequireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFromContext(r.Context())
			if !ok {
				writeUnauthorized(w)
				return
			}
			if !actor.IsSuperuser {
				httpx.WriteError(w, http.StatusForbidden,
					"forbidden", "Administrator privileges required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	httpx.WriteError(w, http.StatusUnauthorized,
		"invalid_token", "Missing or invalid credentials.")
}
