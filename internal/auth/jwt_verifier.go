package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"portal/internal/domain"
)

// JWTVerifier validates tokens against keys from a JWKS endpoint
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	logger  *slog.Logger
}

// NewJWTVerifier fetches signing keys from jwksURL.
// keyfunc caches the set and refreshes it in the background.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return NewJWTVerifierWithKeyfunc(jwks.Keyfunc, logger), nil
}

// NewJWTVerifierWithKeyfunc builds a verifier over an explicit key source
func NewJWTVerifierWithKeyfunc(kf jwt.Keyfunc, logger *slog.Logger) *JWTVerifier {
	return &JWTVerifier{
		keyfunc: kf,
		// only asymmetric algorithms; rejects alg confusion
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "ES256"}),
			jwt.WithExpirationRequired(),
		),
		logger: logger,
	}
}

var _ TokenVerifier = (*JWTVerifier)(nil)

// VerifyToken validates a token and returns its claims
func (v *JWTVerifier) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	if claims.Role != "authenticated" {
		v.logger.Debug("token is not authenticated", "role", claims.Role, "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc v3 stops refreshing when its context ends
func (v *JWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
