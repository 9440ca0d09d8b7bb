package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log/slog"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/golang-jwt/jwt/v5"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
)

func newTestVerifier(c *qt.C) (*JWTVerifier, *ecdsa.PrivateKey) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	c.Assert(err, qt.IsNil)
	kf := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	return NewJWTVerifierWithKeyfunc(kf, slog.New(slog.DiscardHandler)), key
}

func sign(c *qt.C, key any, method jwt.SigningMethod, claims Claims) string {
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	c.Assert(err, qt.IsNil)
	return s
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "00000000-0000-0000-0000-0000000000aa",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:       "ada@example.com",
		Role:        "authenticated",
		AppMetadata: map[string]any{"role": "group_admin"},
	}
}

func TestVerifyToken(t *testing.T) {
	c := qt.New(t)
	v, key := newTestVerifier(c)

	claims, err := v.VerifyToken(sign(c, key, jwt.SigningMethodES256, validClaims()))
	c.Assert(err, qt.IsNil)
	c.Assert(claims.UserID(), qt.Equals, "00000000-0000-0000-0000-0000000000aa")

	role, err := claims.PortalRole("role")
	c.Assert(err, qt.IsNil)
	c.Assert(role, qt.Equals, models.RoleGroupAdmin)
}

func TestVerifyTokenRejects(t *testing.T) {
	c := qt.New(t)
	v, key := newTestVerifier(c)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	anon := validClaims()
	anon.Role = "anon"

	noSubject := validClaims()
	noSubject.Subject = ""

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: sign(c, key, jwt.SigningMethodES256, expired)},
		{name: "anonymous", token: sign(c, key, jwt.SigningMethodES256, anon)},
		{name: "no subject", token: sign(c, key, jwt.SigningMethodES256, noSubject)},
		{name: "no expiry", token: sign(c, key, jwt.SigningMethodES256, noExpiry)},
		{name: "hmac", token: sign(c, []byte("secret"), jwt.SigningMethodHS256, validClaims())},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			_, err := v.VerifyToken(tt.token)
			c.Assert(err, qt.ErrorIs, domain.ErrUnauthorized)
		})
	}
}

func TestPortalRole(t *testing.T) {
	c := qt.New(t)

	claims := &Claims{AppMetadata: map[string]any{"role": "investor", "bad": 7, "odd": "owner"}}
	role, err := claims.PortalRole("role")
	c.Assert(err, qt.IsNil)
	c.Assert(role, qt.Equals, models.RoleInvestor)

	_, err = claims.PortalRole("missing")
	c.Assert(err, qt.ErrorMatches, "token has no missing in app_metadata")
	_, err = claims.PortalRole("bad")
	c.Assert(err, qt.ErrorMatches, "app_metadata.bad is not a string")
	_, err = claims.PortalRole("odd")
	c.Assert(err, qt.IsNotNil)
}
