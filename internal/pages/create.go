package pages

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/images"
	"Inkwell/internal/core/posts"
)

// CreateState is a snapshot of the create form.
type CreateState struct {
	Image      *images.Upload
	Title      string
	Content    string
	Category   string
	Error      string
	Message    string
	Tags       []string
	Categories []categories.Category
}

// CreatePage collects a new post. Tags are gathered one at a time into an
// ordered set and flattened only when the form is submitted.
type CreatePage struct {
	posts      PostService
	categories CategoryService
	viewer     Viewer
	images     ImageLoader
	nav        Navigator
	logger     *slog.Logger

	mu    sync.Mutex
	state CreateState
	tags  posts.TagSet
	gate  submitGate
}

// NewCreatePage creates the create view. images may be nil when uploads
// are not offered.
func NewCreatePage(svc PostService, cats CategoryService, viewer Viewer, loader ImageLoader, nav Navigator, logger *slog.Logger) *CreatePage {
	if logger == nil {
		logger = slog.Default()
	}
	if nav == nil {
		nav = noopNavigator{}
	}
	return &CreatePage{posts: svc, categories: cats, viewer: viewer, images: loader, nav: nav, logger: logger}
}

// State returns a copy of the form.
func (p *CreatePage) State() CreateState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Tags = p.tags.Tags()
	s.Categories = slices.Clone(p.state.Categories)
	return s
}

// Submitting reports whether the submit control should render disabled.
func (p *CreatePage) Submitting() bool { return p.gate.Submitting() }

// LoadCategories fills the category picker. A failure leaves the picker
// empty and the form usable.
func (p *CreatePage) LoadCategories(ctx context.Context) error {
	list, err := p.categories.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.logger.Error("error loading categories", "error", err)
		p.state.Error = messageFor(err, MsgLoadCategories)
		return err
	}
	p.state.Categories = list
	return nil
}

func (p *CreatePage) SetTitle(v string) {
	p.mu.Lock()
	p.state.Title = v
	p.mu.Unlock()
}

func (p *CreatePage) SetContent(v string) {
	p.mu.Lock()
	p.state.Content = v
	p.mu.Unlock()
}

func (p *CreatePage) SetCategory(id string) {
	p.mu.Lock()
	p.state.Category = id
	p.mu.Unlock()
}

// AddTag appends the trimmed input unless it is blank or already present
// (case-sensitive). It reports whether the tag was added.
func (p *CreatePage) AddTag(input string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tags.Add(input)
}

// RemoveTag drops a tag.
func (p *CreatePage) RemoveTag(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tags.Remove(tag)
}

// SetImage loads and prepares the file at path as the featured image.
func (p *CreatePage) SetImage(path string) error {
	up, err := loadImage(p.images, path)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state.Error = err.Error()
		return err
	}
	p.state.Image = up
	return nil
}

// ClearImage drops the selected image.
func (p *CreatePage) ClearImage() {
	p.mu.Lock()
	p.state.Image = nil
	p.mu.Unlock()
}

// Submit sends the form. On success the user is taken to the list view;
// on failure the form is left as is.
func (p *CreatePage) Submit(ctx context.Context) (*posts.Post, error) {
	if !p.gate.begin() {
		return nil, ErrSubmitInProgress
	}
	defer p.gate.end()

	p.mu.Lock()
	form := posts.PostForm{
		Title:    p.state.Title,
		Content:  p.state.Content,
		Category: p.state.Category,
		Tags:     p.tags.Tags(),
		Image:    p.state.Image,
	}
	p.state.Error = ""
	p.state.Message = ""
	p.mu.Unlock()

	if p.viewer != nil {
		form.Author = p.viewer.UserID()
	}

	created, err := p.posts.Create(ctx, form)

	p.mu.Lock()
	if err != nil {
		p.state.Error = MsgCreateFailed
		p.mu.Unlock()
		p.logger.Error("failed to create post", "error", err)
		return nil, err
	}
	p.state.Message = MsgPostCreated
	p.mu.Unlock()

	p.nav.Navigate(RouteHome)
	return created, nil
}

func loadImage(loader ImageLoader, path string) (*images.Upload, error) {
	if loader == nil {
		return nil, ErrUploadsDisabled
	}
	return loader.Load(path)
}
