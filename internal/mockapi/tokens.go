package mockapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenIssuer = "inkwell-mockapi"

// ErrInvalidToken is returned for tokens that fail signature, issuer or
// expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	key jwk.Key
	now func() time.Time
	ttl time.Duration
}

// NewTokens creates a token issuer from a shared secret.
func NewTokens(secret []byte, ttl time.Duration) (*Tokens, error) {
	key, err := jwk.FromRaw(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create signing key: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.HS256); err != nil {
		return nil, fmt.Errorf("failed to set key algorithm: %w", err)
	}
	return &Tokens{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token whose subject is userID.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	tok, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(userID).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature, issuer and expiry and returns the subject.
func (t *Tokens) Verify(raw string) (string, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, t.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(t.now)),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tok.Subject() == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return tok.Subject(), nil
}
