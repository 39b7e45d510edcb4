// Package session owns the client's login state: the bearer token, the
// serialized user and the derived user id. The Store is the only shared
// mutable state between views; it is written by login, logout and the
// global 401 handler and read by every outgoing request.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"Inkwell/internal/core/users"
	"Inkwell/internal/kv"
)

// Keys used in the backing key-value store.
const (
	KeyToken  = "token"
	KeyUser   = "user"
	KeyUserID = "userId"
)

// Session is an authenticated identity plus its credential.
type Session struct {
	User   *users.User
	Token  string
	UserID string
}

// Store persists the session in a kv.Store.
type Store struct {
	kv     kv.Store
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewStore wraps a key-value store. A nil logger uses slog.Default().
func NewStore(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: store, logger: logger}
}

// Get returns the current session, or nil when no token is stored.
// A stored token always yields a session even if the user record is
// unreadable; the token alone is what authenticates requests.
func (s *Store) Get() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	sess := &Session{Token: token}

	if raw, ok, err := s.kv.Get(KeyUser); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	} else if ok && raw != "" {
		var u users.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Warn("ignoring malformed stored user", "error", err)
		} else {
			sess.User = &u
		}
	}

	userID, _, err := s.kv.Get(KeyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user id: %w", err)
	}
	if userID == "" && sess.User != nil {
		userID = sess.User.ID
	}
	sess.UserID = userID

	return sess, nil
}

// Token returns the stored bearer token, or "" when anonymous. Read
// failures are logged and treated as anonymous so a broken store degrades
// to read-only access instead of failing every request.
func (s *Store) Token() string {
	sess, err := s.Get()
	if err != nil {
		s.logger.Warn("session unavailable, sending request unauthenticated", "error", err)
		return ""
	}
	if sess == nil {
		return ""
	}
	return sess.Token
}

// UserID returns the logged-in user's id, or "".
func (s *Store) UserID() string {
	sess, err := s.Get()
	if err != nil || sess == nil {
		return ""
	}
	return sess.UserID
}

// Require returns the current session or ErrNotAuthenticated.
func (s *Store) Require() (*Session, error) {
	sess, err := s.Get()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}

// Set persists a session, replacing any previous one.
func (s *Store) Set(sess Session) error {
	if sess.Token == "" {
		return ErrMissingToken
	}

	userID := sess.UserID
	userJSON := ""
	if sess.User != nil {
		data, err := json.Marshal(sess.User)
		if err != nil {
			return fmt.Errorf("failed to encode session user: %w", err)
		}
		userJSON = string(data)
		if userID == "" {
			userID = sess.User.ID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop the whole previous session first so a failed write leaves the
	// store anonymous rather than pairing the old token with a new user.
	if err := s.kv.Delete(KeyToken, KeyUser, KeyUserID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}

	values := map[string]string{KeyToken: sess.Token}
	if userJSON != "" {
		values[KeyUser] = userJSON
	}
	if userID != "" {
		values[KeyUserID] = userID
	}
	if err := kv.SetMany(s.kv, values); err != nil {
		// Stores without batches may have written some keys.
		if derr := s.kv.Delete(KeyToken, KeyUser, KeyUserID); derr != nil {
			s.logger.Warn("failed to roll back partial session", "error", derr)
		}
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("session stored", "user_id", userID)
	return nil
}

// Clear removes the token, the user and the user id.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(KeyToken, KeyUser, KeyUserID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
