package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	models "portal/internal/domain/models/docsystem"
)

// Claims is the JWT body issued by the identity provider.
// The portal role lives in app_metadata, which users cannot edit.
type Claims struct {
	jwt.RegisteredClaims
	Email       string         `json:"email"`
	AppMetadata map[string]any `json:"app_metadata"`
	Role        string         `json:"role"` // "authenticated" or "anon"
}

// UserID returns the subject claim
func (c *Claims) UserID() string {
	return c.Subject
}

// PortalRole reads the portal role from app_metadata[key]
func (c *Claims) PortalRole(key string) (models.Role, error) {
	raw, ok := c.AppMetadata[key]
	if !ok {
		return "", fmt.Errorf("token has no %s in app_metadata", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("app_metadata.%s is not a string", key)
	}
	return models.ParseRole(s)
}
