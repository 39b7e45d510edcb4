// Package mockapi is an in-memory implementation of the blog backend's
// REST surface. It backs the client's flow tests and local development;
// nothing is persisted.
package mockapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"Inkwell/internal/config"
)

// Server wires the store, token issuer and middleware into a router.
type Server struct {
	cfg     config.MockAPI
	store   *Store
	tokens  *Tokens
	auth    *Authenticator
	limiter *RateLimiter
	logger  *slog.Logger
	router  chi.Router
}

// New creates a fake backend. The API is served under /api and uploaded
// images under /uploads.
func New(cfg config.MockAPI, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mockapi config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	store := NewStore()
	s := &Server{
		cfg:    cfg,
		store:  store,
		tokens: tokens,
		auth:   NewAuthenticator(tokens, store, logger),
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store exposes the backing store for seeding.
func (s *Server) Store() *Store { return s.store }

// Close stops background goroutines.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	if s.cfg.LogRequests {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/uploads/{name}", s.handleUpload)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.With(s.auth.RequireAuth).Post("/", s.handleCreateCategory)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.handleListPosts)
			r.Get("/search", s.handleSearchPosts)
			r.Get("/{id}", s.handleGetPost)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAuth)
				r.Get("/my-posts", s.handleMyPosts)
				r.Post("/", s.handleCreatePost)
				r.Put("/{id}", s.handleUpdatePost)
				r.Delete("/{id}", s.handleDeletePost)
				r.Put("/{id}/like", s.handleToggleLike)
				r.Post("/{id}/comment", s.handleAddComment)
				r.Delete("/{id}/comment/{commentID}", s.handleDeleteComment)
			})
		})
	})

	return r
}
