package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a bearer token without verifying it.
type TokenInfo struct {
	ExpiresAt time.Time
	IssuedAt  time.Time
	Subject   string
}

// Expired reports whether the token carries an expiry that has passed.
// Tokens without an expiry never report expired; the backend's 401 stays
// the authority either way.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// InspectToken reads the registered claims of a JWT bearer token without
// checking its signature. Opaque tokens return ErrOpaqueToken.
func InspectToken(token string) (*TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if strings.Count(token, ".") != 2 {
		return nil, ErrOpaqueToken
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if info.Subject == "" {
		// Some backends put the user id in a private claim instead of "sub".
		if id, ok := claims["id"].(string); ok {
			info.Subject = id
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	return info, nil
}
