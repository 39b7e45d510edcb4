package categories

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheSize = 16

// Service lists and creates categories. The list is treated as static for
// a session, so successful fetches are reused until the TTL runs out or a
// create invalidates them.
type Service struct {
	api    API
	viewer Viewer
	cache  *expirable.LRU[string, []Category]
	logger *slog.Logger
}

// NewService creates a category service. ttl <= 0 disables caching; viewer
// may be nil when only one identity is ever used.
func NewService(api API, viewer Viewer, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{api: api, viewer: viewer, logger: logger}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, []Category](cacheSize, nil, ttl)
	}
	return s
}

// List returns every category. The returned slice is a copy.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	key := s.cacheKey()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return slices.Clone(cached), nil
		}
	}

	var resp listResponse
	if err := s.api.Get(ctx, "/categories", &resp); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	list := []Category(resp)
	if list == nil {
		list = []Category{}
	}

	if s.cache != nil {
		s.cache.Add(key, list)
		s.logger.Debug("cached categories", "count", len(list))
	}
	return slices.Clone(list), nil
}

// Create adds a category and drops every cached list.
func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var resp createResponse
	if err := s.api.Post(ctx, "/categories", map[string]string{"name": name}, &resp); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.Invalidate()

	created := resp.Category
	if created.Name == "" {
		created.Name = name
	}
	return &created, nil
}

// Invalidate drops all cached lists.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *Service) cacheKey() string {
	if s.viewer == nil {
		return ""
	}
	return s.viewer.UserID()
}
