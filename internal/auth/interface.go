package auth

// TokenVerifier validates bearer tokens.
// Middleware depends on this rather than on a JWKS client.
type TokenVerifier interface {
	// VerifyToken returns the claims of a valid token.
	// Invalid, expired or wrongly signed tokens yield domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases resources held by the verifier
	Close() error
}
