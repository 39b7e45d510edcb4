package auth

import "errors"

// ErrNoToken is returned when a login response carries no token.
var ErrNoToken = errors.New("login response did not include a token")
