package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject marks a token that verified correctly but carries no
// subject claim, so no caller identity can be derived from it.
var ErrMissingSubject = errors.New("token has no subject claim")

// VerifyToken checks the token's HS256 signature and expiry against the
// shared secret and extracts the caller identity. Any signature, format or
// expiry problem is returned as-is from the JWT library; a verified token
// without a subject yields ErrMissingSubject.
func VerifyToken(tokenStr string, secret []byte) (Identity, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if _, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return Identity{}, err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrMissingSubject
	}

	ident := Identity{ID: sub}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		ident.Audience = aud[0]
	}
	if role, ok := claims["role"].(string); ok {
		ident.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}

	return ident, nil
}
