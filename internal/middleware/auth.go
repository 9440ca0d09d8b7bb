package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"portal/internal/auth"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/httputil"
)

// Authenticate verifies the bearer token and stores the caller in the request
// context. /health is public.
func Authenticate(verifier auth.TokenVerifier, roleClaim string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			role, err := claims.PortalRole(roleClaim)
			if err != nil {
				logger.Warn("token without portal role", "user_id", claims.UserID(), "error", err)
				httputil.RespondError(w, http.StatusForbidden, "no portal role assigned")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, httputil.Principal{
				UserID: claims.UserID(),
				Email:  claims.Email,
				Role:   role,
			}))
		})
	}
}

// DevPrincipal authenticates every request as a fixed user. Development only.
func DevPrincipal(p httputil.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, httputil.WithPrincipal(r, p))
		})
	}
}

// RequireRole rejects callers whose role is not listed
func RequireRole(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, ok := httputil.GetPrincipal(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, p.Role) {
				httputil.RespondError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next(w, r)
		}
	}
}
