// Package kv provides the process-wide key-value store that backs client
// state which must survive between runs (the login session). It plays the
// role browser local storage plays for a web client: string keys, string
// values, no expiry.
package kv

import "errors"

// ErrEmptyKey is returned when an operation is given an empty key.
var ErrEmptyKey = errors.New("kv: empty key")

// Store is a small string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(keys ...string) error
}

// Batcher is implemented by stores that can apply several writes atomically.
// Callers that need all-or-nothing semantics (writing a whole session) use
// SetMany when available.
type Batcher interface {
	SetMany(values map[string]string) error
}

// SetMany writes values through Batcher when the store supports it, and key
// by key otherwise.
func SetMany(s Store, values map[string]string) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(values)
	}
	for k, v := range values {
		if err := s.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
