package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Fake backend validation errors
var (
	// ErrInvalidPort is returned when Port is outside 1-65535
	ErrInvalidPort = errors.New("Port must be between 1 and 65535")
	// ErrWeakJWTSecret is returned when JWTSecret is shorter than MinJWTSecretLen bytes
	ErrWeakJWTSecret = errors.New("JWTSecret must be at least 32 bytes")
	// ErrInvalidTokenTTL is returned when TokenTTL is not positive
	ErrInvalidTokenTTL = errors.New("TokenTTL must be positive")
	// ErrInvalidUploadLimit is returned when MaxUploadBytes is not positive
	ErrInvalidUploadLimit = errors.New("MaxUploadBytes must be positive")
)

// MinJWTSecretLen is the shortest accepted HS256 secret.
const MinJWTSecretLen = 32

// devJWTSecret signs tokens when MOCKAPI_JWT_SECRET is unset. Never use it
// outside local development.
const devJWTSecret = "inkwell-mockapi-development-secret-do-not-use"

// MockAPI configures the in-memory fake backend.
type MockAPI struct {
	JWTSecret string
	Port      int
	TokenTTL  time.Duration

	// RateLimit is the number of requests allowed per client per RateWindow.
	// 0 disables rate limiting.
	RateLimit  int
	RateWindow time.Duration

	MaxUploadBytes int64

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// LogRequests enables chi's request logger.
	LogRequests bool

	LogLevel slog.Level
}

// DefaultMockAPI returns the fake backend defaults.
func DefaultMockAPI() MockAPI {
	return MockAPI{
		Port:           5000,
		JWTSecret:      devJWTSecret,
		TokenTTL:       time.Hour,
		RateLimit:      100,
		RateWindow:     time.Minute,
		MaxUploadBytes: 10 << 20,
		CORSOrigins:    []string{"*"},
		LogRequests:    true,
		LogLevel:       slog.LevelInfo,
	}
}

// Validate checks the configuration.
func (c MockAPI) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if len(c.JWTSecret) < MinJWTSecretLen {
		return ErrWeakJWTSecret
	}
	if c.TokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateWindow <= 0) {
		return ErrInvalidRateLimit
	}
	if c.MaxUploadBytes <= 0 {
		return ErrInvalidUploadLimit
	}
	return nil
}

// MockAPIFromEnv reads MOCKAPI_* variables on top of DefaultMockAPI.
// Invalid values are logged and ignored.
func MockAPIFromEnv() MockAPI {
	cfg := DefaultMockAPI()

	if n, ok := envInt("MOCKAPI_PORT", 1); ok {
		cfg.Port = n
	}
	if v := os.Getenv("MOCKAPI_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if n, ok := envInt("MOCKAPI_TOKEN_TTL_MINUTES", 1); ok {
		cfg.TokenTTL = time.Duration(n) * time.Minute
	}
	if n, ok := envInt("MOCKAPI_RATE_LIMIT", 0); ok {
		cfg.RateLimit = n
	}
	if n, ok := envInt("MOCKAPI_MAX_UPLOAD_MB", 1); ok {
		cfg.MaxUploadBytes = int64(n) << 20
	}
	if v := os.Getenv("MOCKAPI_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v := os.Getenv("MOCKAPI_LOG_REQUESTS"); v == "false" || v == "0" {
		cfg.LogRequests = false
	}
	if v := os.Getenv("MOCKAPI_LOG_LEVEL"); v != "" {
		if lvl, err := ParseLogLevel(v); err == nil {
			cfg.LogLevel = lvl
		} else {
			slog.Warn("invalid MOCKAPI_LOG_LEVEL value, using default", "value", v, "error", err)
		}
	}

	return cfg
}
