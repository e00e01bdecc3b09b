package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token and injects its claims into the
// request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			claims, err := v.Verify(raw)
			if err != nil {
				desc := "token verification failed"
				if errors.Is(err, jwtx.ErrExpired) {
					desc = "token expired"
				}
				log.Warn("jwt verify failed", slog.Any("error", err))
				writeBearerError(w, desc)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.WithAttrs(ctx, "username", claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits callers whose role is one of roles.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, Role(r.Context())) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAMR admits only sessions established with method.
func RequireAMR(method string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFrom(r.Context())
			if !ok || !c.HasAMR(method) {
				WriteError(w, http.StatusForbidden, "forbidden", "session not permitted for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RejectAMR turns away sessions established with method. One-time password
// sessions use it to reach nothing but the password reset.
func RejectAMR(method string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, ok := ClaimsFrom(r.Context()); ok && c.HasAMR(method) {
				WriteError(w, http.StatusForbidden, "password_reset_required",
					"a new password must be set before continuing")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
