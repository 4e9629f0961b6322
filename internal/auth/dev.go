package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevVerifier accepts HS256 tokens signed with a local secret. It exists so
// the API can be exercised without real Google credentials when ENV=dev;
// main never wires it in any other environment.
type DevVerifier struct {
	Secret []byte
}

func NewDevVerifier(secret []byte) *DevVerifier {
	return &DevVerifier{Secret: secret}
}

func (v *DevVerifier) Verify(_ context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, errors.New("token has no subject")
	}

	claims := &Claims{Subject: sub}
	claims.Email, _ = mc["email"].(string)
	claims.Name, _ = mc["name"].(string)
	claims.Picture, _ = mc["picture"].(string)
	claims.Issuer, _ = mc["iss"].(string)
	return claims, nil
}

// MintDevToken signs a token the DevVerifier will accept. Used by the
// dev-only /dev/token endpoint and by tests.
func MintDevToken(secret []byte, claims *Claims, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     claims.Subject,
		"email":   claims.Email,
		"name":    claims.Name,
		"picture": claims.Picture,
		"iss":     claims.Issuer,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}
