package pages

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"Inkwell/internal/core/posts"
	"Inkwell/internal/session"
)

// DetailState is a snapshot of the detail view.
type DetailState struct {
	Post    *posts.Post
	ID      string
	Draft   string
	Error   string
	Message string
	Loading bool
}

// DetailPage shows one post with its likes and comments.
type DetailPage struct {
	posts   PostService
	viewer  Viewer
	confirm Confirmer
	nav     Navigator
	logger  *slog.Logger

	mu      sync.Mutex
	state   DetailState
	guard   requestGuard
	like    submitGate
	comment submitGate
}

// NewDetailPage creates the detail view. nav and confirm may be nil.
func NewDetailPage(svc PostService, viewer Viewer, confirm Confirmer, nav Navigator, logger *slog.Logger) *DetailPage {
	if logger == nil {
		logger = slog.Default()
	}
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if nav == nil {
		nav = noopNavigator{}
	}
	return &DetailPage{posts: svc, viewer: viewer, confirm: confirm, nav: nav, logger: logger}
}

// State returns a copy of the current state.
func (p *DetailPage) State() DetailState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Post = clonePost(p.state.Post)
	return s
}

// Liking reports whether a like toggle is in flight.
func (p *DetailPage) Liking() bool { return p.like.Submitting() }

// Commenting reports whether a comment add or delete is in flight.
func (p *DetailPage) Commenting() bool { return p.comment.Submitting() }

// Load fetches a post. A response for an id that is no longer the one on
// display is discarded.
func (p *DetailPage) Load(ctx context.Context, id string) error {
	p.mu.Lock()
	gen := p.guard.next()
	if p.state.ID != id {
		p.state.Post = nil
		p.state.Draft = ""
		p.state.Message = ""
	}
	p.state.ID = id
	p.state.Loading = true
	p.mu.Unlock()

	post, err := p.posts.Get(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.guard.current(gen) {
		p.logger.Debug("discarding stale post response", "post_id", id)
		return nil
	}

	p.state.Loading = false
	if err != nil {
		p.state.Error = messageFor(err, MsgLoadPostFailed)
		return err
	}
	p.state.Error = ""
	p.state.Post = post
	return nil
}

// Reload fetches the post on display again.
func (p *DetailPage) Reload(ctx context.Context) error {
	p.mu.Lock()
	id := p.state.ID
	p.mu.Unlock()
	if id == "" {
		return ErrNotLoaded
	}
	return p.Load(ctx, id)
}

// Liked reports whether the viewer is in the post's like set.
func (p *DetailPage) Liked() bool {
	userID := p.userID()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Post != nil && p.state.Post.HasLiked(userID)
}

// CanEdit reports whether the viewer wrote the post.
func (p *DetailPage) CanEdit() bool {
	userID := p.userID()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Post != nil && p.state.Post.IsAuthor(userID)
}

// CanDeleteComment reports whether the delete control should be offered.
func (p *DetailPage) CanDeleteComment(commentID string) bool {
	userID := p.userID()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canDeleteLocked(userID, commentID)
}

func (p *DetailPage) canDeleteLocked(userID, commentID string) bool {
	if p.state.Post == nil {
		return false
	}
	for _, c := range p.state.Post.Comments {
		if c.ID == commentID {
			return c.CanDelete(userID, p.state.Post)
		}
	}
	return false
}

// Edit navigates to the edit view when the viewer is the author.
func (p *DetailPage) Edit() bool {
	if !p.CanEdit() {
		return false
	}
	p.mu.Lock()
	id := p.state.Post.ID
	p.mu.Unlock()
	p.nav.Navigate(RouteEditPost(id))
	return true
}

// ToggleLike likes or unlikes the post. After the round trip succeeds the
// server's like set is applied, or the viewer's membership is flipped when
// the response has none.
func (p *DetailPage) ToggleLike(ctx context.Context) error {
	userID := p.userID()
	if userID == "" {
		p.setError(MsgLoginToLike)
		return session.ErrNotAuthenticated
	}

	p.mu.Lock()
	if p.state.Post == nil {
		p.mu.Unlock()
		return ErrNotLoaded
	}
	postID := p.state.Post.ID
	wasLiked := p.state.Post.HasLiked(userID)
	p.mu.Unlock()

	if !p.like.begin() {
		return ErrSubmitInProgress
	}
	defer p.like.end()

	res, err := p.posts.ToggleLike(ctx, postID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			p.state.Error = MsgLoginToLike
		} else {
			p.state.Error = messageFor(err, MsgLikeFailed)
		}
		return err
	}
	if p.state.Post == nil || p.state.Post.ID != postID {
		return nil
	}

	updated := clonePost(p.state.Post)
	switch {
	case res.Likes != nil:
		updated.Likes = res.Likes
	default:
		liked := !wasLiked
		if res.Liked != nil {
			liked = *res.Liked
		}
		updated.Likes = slices.DeleteFunc(updated.Likes, func(id string) bool { return id == userID })
		if liked {
			updated.Likes = append(updated.Likes, userID)
		}
	}
	p.state.Post = updated
	p.state.Error = ""
	return nil
}

// AddComment posts text as a comment, then re-fetches the post. Blank text
// is refused without a request.
func (p *DetailPage) AddComment(ctx context.Context, text string) error {
	p.mu.Lock()
	p.state.Draft = text
	postID := ""
	if p.state.Post != nil {
		postID = p.state.Post.ID
	}
	p.mu.Unlock()

	if _, err := posts.ValidateComment(text); err != nil {
		if errors.Is(err, posts.ErrContentEmpty) {
			p.setError(MsgCommentEmpty)
		} else {
			p.setError(MsgCommentTooLong)
		}
		return err
	}
	if postID == "" {
		return ErrNotLoaded
	}

	if !p.comment.begin() {
		return ErrSubmitInProgress
	}
	defer p.comment.end()

	if err := p.posts.AddComment(ctx, postID, text); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			p.setError(MsgLoginToComment)
		} else {
			p.setError(messageFor(err, MsgAddCommentFailed))
		}
		return err
	}

	p.mu.Lock()
	if p.state.ID == postID {
		p.state.Draft = ""
	}
	p.mu.Unlock()

	return p.Load(ctx, postID)
}

// DeleteComment asks for confirmation, deletes the comment and re-fetches
// the post. Only offered to the comment's author or the post's author.
func (p *DetailPage) DeleteComment(ctx context.Context, commentID string) error {
	userID := p.userID()

	p.mu.Lock()
	if p.state.Post == nil {
		p.mu.Unlock()
		return ErrNotLoaded
	}
	postID := p.state.Post.ID
	allowed := p.canDeleteLocked(userID, commentID)
	p.mu.Unlock()

	if userID == "" {
		p.setError(MsgLoginToComment)
		return session.ErrNotAuthenticated
	}
	if !allowed {
		p.setError(MsgCannotDeleteReply)
		return ErrNotPermitted
	}
	if !p.confirm.Confirm(MsgConfirmDeleteReply) {
		return ErrCancelled
	}

	if !p.comment.begin() {
		return ErrSubmitInProgress
	}
	defer p.comment.end()

	if err := p.posts.DeleteComment(ctx, postID, commentID); err != nil {
		p.setError(messageFor(err, MsgDeleteReplyFailed))
		return err
	}
	return p.Load(ctx, postID)
}

func (p *DetailPage) userID() string {
	if p.viewer == nil {
		return ""
	}
	return p.viewer.UserID()
}

func (p *DetailPage) setError(msg string) {
	p.mu.Lock()
	p.state.Error = msg
	p.mu.Unlock()
}

func clonePost(post *posts.Post) *posts.Post {
	if post == nil {
		return nil
	}
	c := *post
	c.Tags = slices.Clone(post.Tags)
	c.Likes = slices.Clone(post.Likes)
	c.Comments = slices.Clone(post.Comments)
	return &c
}
