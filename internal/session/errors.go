package session

import "errors"

var (
	// ErrNotAuthenticated is the local refusal for operations that need a
	// login. It is returned before any request is sent.
	ErrNotAuthenticated = errors.New("must be logged in")

	// ErrMissingToken indicates an attempt to persist a session without a token
	ErrMissingToken = errors.New("session token is required")

	// ErrOpaqueToken indicates the token is not a JWT, so no claims can be read
	ErrOpaqueToken = errors.New("token carries no readable claims")
)
