// Package auth registers accounts and manages the login session.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/core/users"
	"Inkwell/internal/session"
)

// API is the slice of apiclient.Client the service needs.
type API interface {
	Post(ctx context.Context, path string, body, out any, opts ...apiclient.RequestOption) error
}

// Service talks to /auth and owns writes to the session store on login
// and logout.
type Service struct {
	api      API
	sessions *session.Store
	logger   *slog.Logger
}

// NewService creates an auth service. A nil logger uses slog.Default().
func NewService(api API, sessions *session.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, sessions: sessions, logger: logger}
}

// Response is what register and login return.
type Response struct {
	User    *users.User `json:"user"`
	Token   string      `json:"token"`
	Message string      `json:"message"`
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Response, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &users.MissingFieldError{Field: "name"}
	}

	var resp Response
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := s.api.Post(ctx, "/auth/register", body, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("account registered", "email", email)
	return &resp, nil
}

// Login authenticates and persists token, user and user id.
func (s *Service) Login(ctx context.Context, email, password string) (*Response, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var resp Response
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, ErrNoToken
	}

	sess := session.Session{Token: resp.Token, User: resp.User}
	if resp.User != nil {
		sess.UserID = resp.User.ID
	}
	if err := s.sessions.Set(sess); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// Logout clears the persisted session. No request is made.
func (s *Service) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// CurrentUser returns the stored user, or nil when anonymous.
func (s *Service) CurrentUser() (*users.User, error) {
	sess, err := s.sessions.Get()
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.User != nil {
		return sess.User, nil
	}
	if sess.UserID != "" {
		return &users.User{ID: sess.UserID}, nil
	}
	return nil, nil
}

func validateCredentials(email, password string) error {
	if email == "" {
		return &users.MissingFieldError{Field: "email"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &users.InvalidEmailError{Email: email}
	}
	if password == "" {
		return &users.MissingFieldError{Field: "password"}
	}
	return nil
}
