package pages

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"Inkwell/internal/core/posts"
	"Inkwell/internal/session"
)

// ListState is a snapshot of the list view.
type ListState struct {
	Search     string
	Category   string
	Tag        string
	Error      string
	Message    string
	Items      []posts.Post
	Page       int
	TotalPages int
	Loading    bool
	Loaded     bool
}

// ListPage is the paginated, searchable post list.
type ListPage struct {
	posts   PostService
	viewer  Viewer
	confirm Confirmer
	logger  *slog.Logger

	mu     sync.Mutex
	state  ListState
	limit  int
	guard  requestGuard
	delete submitGate
}

// NewListPage creates the list view starting at page 1. A nil confirm
// accepts every prompt.
func NewListPage(svc PostService, viewer Viewer, confirm Confirmer, pageSize int, logger *slog.Logger) *ListPage {
	if logger == nil {
		logger = slog.Default()
	}
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if pageSize < 1 {
		pageSize = 6
	}
	return &ListPage{
		posts:   svc,
		viewer:  viewer,
		confirm: confirm,
		logger:  logger,
		limit:   pageSize,
		state:   ListState{Page: 1, TotalPages: 1},
	}
}

// State returns a copy of the current state.
func (p *ListPage) State() ListState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Items = slices.Clone(p.state.Items)
	return s
}

// Deleting reports whether a delete is in flight.
func (p *ListPage) Deleting() bool {
	return p.delete.Submitting()
}

// Load fetches the current page and search term.
func (p *ListPage) Load(ctx context.Context) error {
	return p.update(ctx, func(*ListState) {})
}

// SetPage moves to page n, bounded by [1, TotalPages]. Before the first
// load the upper bound is unknown and the server's answer clamps it.
func (p *ListPage) SetPage(ctx context.Context, n int) error {
	return p.update(ctx, func(s *ListState) {
		s.Page = max(1, n)
		if s.Loaded {
			s.Page = min(s.Page, s.TotalPages)
		}
	})
}

// NextPage moves forward one page if there is one.
func (p *ListPage) NextPage(ctx context.Context) error {
	return p.update(ctx, func(s *ListState) {
		if s.Page < s.TotalPages {
			s.Page++
		}
	})
}

// PrevPage moves back one page if there is one.
func (p *ListPage) PrevPage(ctx context.Context) error {
	return p.update(ctx, func(s *ListState) {
		if s.Page > 1 {
			s.Page--
		}
	})
}

// SetSearch changes the search term. The page resets to 1 before the fetch
// is issued, so a response for the old term's page can never be applied.
func (p *ListPage) SetSearch(ctx context.Context, term string) error {
	return p.update(ctx, func(s *ListState) {
		s.Search = strings.TrimSpace(term)
		s.Page = 1
	})
}

// SetCategory filters by category id on the server. Empty clears it.
func (p *ListPage) SetCategory(ctx context.Context, id string) error {
	return p.update(ctx, func(s *ListState) {
		s.Category = id
		s.Page = 1
	})
}

// ListQuery is a full set of server-side list parameters.
type ListQuery struct {
	Search   string
	Category string
	Page     int
}

// Query replaces search, category and page in a single fetch.
func (p *ListPage) Query(ctx context.Context, q ListQuery) error {
	return p.update(ctx, func(s *ListState) {
		s.Search = strings.TrimSpace(q.Search)
		s.Category = q.Category
		s.Page = max(1, q.Page)
	})
}

// SelectTag filters the loaded page to posts carrying tag. No request is made.
func (p *ListPage) SelectTag(tag string) {
	p.mu.Lock()
	p.state.Tag = strings.TrimSpace(tag)
	p.mu.Unlock()
}

// ClearTag removes the tag filter.
func (p *ListPage) ClearTag() {
	p.SelectTag("")
}

// Visible returns the loaded posts after the tag filter.
func (p *ListPage) Visible() []posts.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Tag == "" {
		return slices.Clone(p.state.Items)
	}
	var out []posts.Post
	for _, post := range p.state.Items {
		if slices.Contains(post.Tags, p.state.Tag) {
			out = append(out, post)
		}
	}
	return out
}

// update applies mutate, then fetches with the resulting parameters. If
// the server reports fewer pages than the requested one, the page is
// clamped and fetched once more.
func (p *ListPage) update(ctx context.Context, mutate func(*ListState)) error {
	clamped, err := p.fetch(ctx, mutate)
	if err != nil || !clamped {
		return err
	}
	_, err = p.fetch(ctx, func(*ListState) {})
	return err
}

func (p *ListPage) fetch(ctx context.Context, mutate func(*ListState)) (bool, error) {
	p.mu.Lock()
	mutate(&p.state)
	gen := p.guard.next()
	params := posts.ListParams{
		Page:     p.state.Page,
		Limit:    p.limit,
		Search:   p.state.Search,
		Category: p.state.Category,
	}
	p.state.Loading = true
	p.mu.Unlock()

	res, err := p.posts.List(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.guard.current(gen) {
		p.logger.Debug("discarding stale list response",
			"page", params.Page, "search", params.Search, "error", err)
		return false, nil
	}

	p.state.Loading = false
	if err != nil {
		p.state.Error = messageFor(err, MsgFetchPostsFailed)
		p.logger.Error("failed to fetch posts", "page", params.Page, "error", err)
		return false, err
	}

	p.state.Error = ""
	p.state.Items = res.Posts
	p.state.TotalPages = res.TotalPages
	p.state.Loaded = true
	target := params.Page
	if res.Page >= 1 && res.Page < target {
		target = res.Page
	}
	if res.TotalPages >= 1 && target > res.TotalPages {
		target = res.TotalPages
	}
	if target != params.Page {
		p.state.Page = target
		return true, nil
	}
	return false, nil
}

// Delete asks for confirmation, then deletes the post and drops it from
// the loaded page. An anonymous viewer is refused locally.
func (p *ListPage) Delete(ctx context.Context, id string) error {
	if !p.confirm.Confirm(MsgConfirmDeletePost) {
		return ErrCancelled
	}
	if p.viewer == nil || p.viewer.Token() == "" {
		p.setError(MsgLoginToDelete)
		return session.ErrNotAuthenticated
	}
	if !p.delete.begin() {
		return ErrSubmitInProgress
	}
	defer p.delete.end()

	msg, err := p.posts.Delete(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			p.state.Error = MsgLoginToDelete
		} else {
			p.state.Error = messageFor(err, MsgDeletePostFailed)
		}
		return err
	}

	p.state.Items = slices.DeleteFunc(slices.Clone(p.state.Items), func(post posts.Post) bool {
		return post.ID == id
	})
	p.state.Error = ""
	p.state.Message = msg
	return nil
}

func (p *ListPage) setError(msg string) {
	p.mu.Lock()
	p.state.Error = msg
	p.mu.Unlock()
}
