// Package config loads the client's runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config validation errors
var (
	// ErrMissingAPIURL is returned when APIURL is empty
	ErrMissingAPIURL = errors.New("APIURL is required")
	// ErrInvalidAPIURL is returned when APIURL is not an absolute http(s) URL
	ErrInvalidAPIURL = errors.New("APIURL must be an absolute http or https URL")
	// ErrInvalidTimeout is returned when HTTPTimeout is not positive
	ErrInvalidTimeout = errors.New("HTTPTimeout must be positive")
	// ErrInvalidRetryMax is returned when RetryMax is negative
	ErrInvalidRetryMax = errors.New("RetryMax cannot be negative")
	// ErrInvalidRateLimit is returned when RateLimitRPS is negative or the burst is not positive
	ErrInvalidRateLimit = errors.New("RateLimitRPS cannot be negative and RateLimitBurst must be positive")
	// ErrInvalidSessionBackend is returned for an unknown SessionBackend
	ErrInvalidSessionBackend = errors.New("SessionBackend must be one of memory, file, sqlite")
	// ErrMissingSessionPath is returned when a persistent backend has no path
	ErrMissingSessionPath = errors.New("SessionPath is required for persistent session backends")
	// ErrInvalidPageSize is returned when PageSize is not positive
	ErrInvalidPageSize = errors.New("PageSize must be positive")
	// ErrInvalidCacheTTL is returned when CategoryCacheTTL is negative
	ErrInvalidCacheTTL = errors.New("CategoryCacheTTL cannot be negative")
	// ErrInvalidImageBounds is returned when the image bounds or quality are out of range
	ErrInvalidImageBounds = errors.New("image bounds must be positive and quality within 1-100")
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds everything the client needs to talk to the backend.
type Config struct {
	// APIURL is the backend base URL, e.g. "http://localhost:5000/api".
	APIURL string

	HTTPTimeout time.Duration

	// RetryMax is how many times an idempotent GET is retried. 0 disables retries.
	RetryMax int

	// RateLimitRPS throttles outgoing requests. 0 means unlimited.
	RateLimitRPS   float64
	RateLimitBurst int

	// SessionBackend selects where the session is persisted.
	SessionBackend string
	SessionPath    string

	// PageSize is the number of posts fetched per list page.
	PageSize int

	// CategoryCacheTTL bounds how long a fetched category list is reused.
	// 0 disables caching.
	CategoryCacheTTL time.Duration

	ImageMaxWidth    int
	ImageMaxHeight   int
	ImageQuality     int
	ImageMaxSourceMB int

	LogLevel slog.Level
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		APIURL:           "http://localhost:5000/api",
		HTTPTimeout:      30 * time.Second,
		RetryMax:         2,
		RateLimitRPS:     0,
		RateLimitBurst:   5,
		SessionBackend:   BackendFile,
		SessionPath:      DefaultSessionPath(BackendFile),
		PageSize:         6,
		CategoryCacheTTL: 5 * time.Minute,
		ImageMaxWidth:    1600,
		ImageMaxHeight:   1600,
		ImageQuality:     85,
		ImageMaxSourceMB: 10,
		LogLevel:         slog.LevelInfo,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: got %q", ErrInvalidAPIURL, c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeout, c.HTTPTimeout)
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRetryMax, c.RetryMax)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%w: got %v/%d", ErrInvalidRateLimit, c.RateLimitRPS, c.RateLimitBurst)
	}
	switch c.SessionBackend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if c.SessionPath == "" {
			return ErrMissingSessionPath
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidSessionBackend, c.SessionBackend)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.PageSize)
	}
	if c.CategoryCacheTTL < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidCacheTTL, c.CategoryCacheTTL)
	}
	if c.ImageMaxWidth <= 0 || c.ImageMaxHeight <= 0 || c.ImageMaxSourceMB <= 0 ||
		c.ImageQuality < 1 || c.ImageQuality > 100 {
		return ErrInvalidImageBounds
	}
	return nil
}

// FromEnv creates a Config from environment variables, falling back to
// defaults for anything unset or unparsable.
//
// Environment variables:
//   - INKWELL_API_URL: backend base URL (default: http://localhost:5000/api)
//   - INKWELL_HTTP_TIMEOUT_SECONDS: per-request timeout (default: 30)
//   - INKWELL_HTTP_RETRY_MAX: GET retries, 0 to disable (default: 2)
//   - INKWELL_RATE_LIMIT_RPS: requests per second, 0 for unlimited (default: 0)
//   - INKWELL_RATE_LIMIT_BURST: limiter burst (default: 5)
//   - INKWELL_SESSION_BACKEND: memory, file or sqlite (default: file)
//   - INKWELL_SESSION_PATH: session file or database (default: user config dir)
//   - INKWELL_PAGE_SIZE: posts per list page (default: 6)
//   - INKWELL_CATEGORY_CACHE_TTL_SECONDS: category cache lifetime, 0 to disable (default: 300)
//   - INKWELL_IMAGE_MAX_WIDTH / INKWELL_IMAGE_MAX_HEIGHT: upload bounds (default: 1600)
//   - INKWELL_IMAGE_QUALITY: JPEG quality for resized uploads (default: 85)
//   - INKWELL_IMAGE_MAX_SOURCE_MB: largest accepted source image (default: 10)
//   - INKWELL_LOG_LEVEL: debug, info, warn or error (default: info)
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("INKWELL_API_URL"); v != "" {
		cfg.APIURL = v
	}

	if n, ok := envInt("INKWELL_HTTP_TIMEOUT_SECONDS", 1); ok {
		cfg.HTTPTimeout = time.Duration(n) * time.Second
	}
	if n, ok := envInt("INKWELL_HTTP_RETRY_MAX", 0); ok {
		cfg.RetryMax = n
	}

	if v := os.Getenv("INKWELL_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RateLimitRPS = f
		} else {
			slog.Warn("invalid INKWELL_RATE_LIMIT_RPS value, using default",
				"value", v,
				"default", cfg.RateLimitRPS,
				"error", err,
			)
		}
	}
	if n, ok := envInt("INKWELL_RATE_LIMIT_BURST", 1); ok {
		cfg.RateLimitBurst = n
	}

	if v := os.Getenv("INKWELL_SESSION_BACKEND"); v != "" {
		cfg.SessionBackend = strings.ToLower(v)
		cfg.SessionPath = DefaultSessionPath(cfg.SessionBackend)
	}
	if v := os.Getenv("INKWELL_SESSION_PATH"); v != "" {
		cfg.SessionPath = v
	}

	if n, ok := envInt("INKWELL_PAGE_SIZE", 1); ok {
		cfg.PageSize = n
	}
	if n, ok := envInt("INKWELL_CATEGORY_CACHE_TTL_SECONDS", 0); ok {
		cfg.CategoryCacheTTL = time.Duration(n) * time.Second
	}

	if n, ok := envInt("INKWELL_IMAGE_MAX_WIDTH", 1); ok {
		cfg.ImageMaxWidth = n
	}
	if n, ok := envInt("INKWELL_IMAGE_MAX_HEIGHT", 1); ok {
		cfg.ImageMaxHeight = n
	}
	if n, ok := envInt("INKWELL_IMAGE_QUALITY", 1); ok && n <= 100 {
		cfg.ImageQuality = n
	}
	if n, ok := envInt("INKWELL_IMAGE_MAX_SOURCE_MB", 1); ok {
		cfg.ImageMaxSourceMB = n
	}

	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		if lvl, err := ParseLogLevel(v); err == nil {
			cfg.LogLevel = lvl
		} else {
			slog.Warn("invalid INKWELL_LOG_LEVEL value, using default", "value", v, "error", err)
		}
	}

	return cfg
}

// ParseLogLevel parses debug, info, warn or error (case-insensitive).
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// envInt reads an integer >= min. ok is false when the variable is unset or
// invalid; invalid values are logged.
func envInt(key string, min int) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		slog.Warn("invalid "+key+" value, using default",
			"value", v,
			"min", min,
			"error", err,
		)
		return 0, false
	}
	return n, true
}

// DefaultSessionPath returns where backend keeps the session under the
// user config directory, or "" for the memory backend.
func DefaultSessionPath(backend string) string {
	name := "session.json"
	switch backend {
	case BackendMemory:
		return ""
	case BackendSQLite:
		name = "session.db"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "inkwell", name)
}
