package auth

import "context"

// Claims is the verified identity extracted from a Google ID token.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
	Issuer  string
}

// TokenVerifier validates a raw bearer token and extracts its claims.
// Verification failures of any kind are reported as a plain error; the
// middleware treats every one of them as an invalid token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// ValidIssuer reports whether iss is one of Google's two canonical issuer
// strings. Both forms are equivalent.
func ValidIssuer(iss string) bool {
	return iss == "accounts.google.com" || iss == "https://accounts.google.com"
}
