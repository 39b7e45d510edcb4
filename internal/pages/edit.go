package pages

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/images"
	"Inkwell/internal/core/posts"
)

// EditState is a snapshot of the edit form. Tags is free text; it is
// pre-filled with the post's tags joined by ", ".
type EditState struct {
	NewImage      *images.Upload
	ID            string
	Title         string
	Content       string
	Category      string
	Tags          string
	FeaturedImage string
	Author        string
	Error         string
	Categories    []categories.Category
	Loading       bool
	Loaded        bool
}

// EditPage edits an existing post. Submitting always sends the full field
// set; there is no partial update.
type EditPage struct {
	posts      PostService
	categories CategoryService
	images     ImageLoader
	nav        Navigator
	logger     *slog.Logger

	mu    sync.Mutex
	state EditState
	guard requestGuard
	gate  submitGate
}

// NewEditPage creates the edit view.
func NewEditPage(svc PostService, cats CategoryService, loader ImageLoader, nav Navigator, logger *slog.Logger) *EditPage {
	if logger == nil {
		logger = slog.Default()
	}
	if nav == nil {
		nav = noopNavigator{}
	}
	return &EditPage{posts: svc, categories: cats, images: loader, nav: nav, logger: logger}
}

// State returns a copy of the form.
func (p *EditPage) State() EditState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Categories = slices.Clone(p.state.Categories)
	return s
}

// Saving reports whether the submit control should render disabled.
func (p *EditPage) Saving() bool { return p.gate.Submitting() }

// Load fetches the category list and the post in parallel and pre-fills
// the form once both have arrived.
func (p *EditPage) Load(ctx context.Context, id string) error {
	p.mu.Lock()
	gen := p.guard.next()
	p.state = EditState{ID: id, Loading: true}
	p.mu.Unlock()

	var (
		cats []categories.Category
		post *posts.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = p.categories.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		post, err = p.posts.Get(gctx, id)
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.guard.current(gen) {
		p.logger.Debug("discarding stale edit load", "post_id", id)
		return nil
	}

	p.state.Loading = false
	if err != nil {
		p.state.Error = messageFor(err, MsgLoadPostFailed)
		return err
	}

	p.state.Categories = cats
	p.state.Title = post.Title
	p.state.Content = post.Content
	p.state.Category = post.Category.ID
	p.state.Tags = posts.JoinTags(post.Tags, ", ")
	p.state.FeaturedImage = post.FeaturedImage
	p.state.Author = post.Author.ID
	p.state.Loaded = true
	return nil
}

func (p *EditPage) SetTitle(v string) {
	p.mu.Lock()
	p.state.Title = v
	p.mu.Unlock()
}

func (p *EditPage) SetContent(v string) {
	p.mu.Lock()
	p.state.Content = v
	p.mu.Unlock()
}

func (p *EditPage) SetCategory(id string) {
	p.mu.Lock()
	p.state.Category = id
	p.mu.Unlock()
}

// SetTags replaces the free text tag field.
func (p *EditPage) SetTags(text string) {
	p.mu.Lock()
	p.state.Tags = text
	p.mu.Unlock()
}

// SetImage selects a replacement featured image.
func (p *EditPage) SetImage(path string) error {
	up, err := loadImage(p.images, path)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state.Error = err.Error()
		return err
	}
	p.state.NewImage = up
	return nil
}

// Submit sends every field. Tags are re-parsed from the free text: split
// on commas, trimmed, blanks dropped. On success the user is taken to the
// post; on failure the form stays populated for a retry.
func (p *EditPage) Submit(ctx context.Context) error {
	p.mu.Lock()
	if !p.state.Loaded {
		p.mu.Unlock()
		return ErrNotLoaded
	}
	p.mu.Unlock()

	if !p.gate.begin() {
		return ErrSubmitInProgress
	}
	defer p.gate.end()

	p.mu.Lock()
	id := p.state.ID
	form := posts.PostForm{
		Title:    p.state.Title,
		Content:  p.state.Content,
		Category: p.state.Category,
		Author:   p.state.Author,
		Tags:     posts.ParseTags(p.state.Tags),
		Image:    p.state.NewImage,
	}
	p.state.Error = ""
	p.mu.Unlock()

	updated, err := p.posts.Update(ctx, id, form)

	p.mu.Lock()
	if err != nil {
		p.state.Error = messageFor(err, MsgUpdateFailed)
		p.mu.Unlock()
		return err
	}
	p.state.NewImage = nil
	if updated != nil && updated.FeaturedImage != "" {
		p.state.FeaturedImage = updated.FeaturedImage
	}
	p.mu.Unlock()

	p.nav.Navigate(RoutePost(id))
	return nil
}
