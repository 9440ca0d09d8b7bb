package httputil

import (
	"context"
	"net/http"

	models "portal/internal/domain/models/docsystem"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Email  string
	Role   models.Role
}

// WithPrincipal adds the caller to the request context
func WithPrincipal(r *http.Request, p Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, p)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the caller; ok is false for anonymous requests
func GetPrincipal(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}
