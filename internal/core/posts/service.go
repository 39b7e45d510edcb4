package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/session"
)

// Service is the typed facade over the backend's post endpoints.
// Operations that need a login check the session first and fail with
// session.ErrNotAuthenticated without touching the network.
type Service struct {
	api      API
	sessions Sessions
	logger   *slog.Logger
}

// NewService creates a post service. A nil logger uses slog.Default().
func NewService(api API, sessions Sessions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, sessions: sessions, logger: logger}
}

// requireSession fails with session.ErrNotAuthenticated when there is no
// login, including when the service was built without a session store.
func (s *Service) requireSession() error {
	if s.sessions == nil {
		return session.ErrNotAuthenticated
	}
	_, err := s.sessions.Require()
	return err
}

// List fetches one page of posts.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 || params.Limit < 1 {
		return nil, fmt.Errorf("%w: page=%d limit=%d", ErrInvalidPage, params.Page, params.Limit)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}

	var resp listResponse
	if err := s.api.Get(ctx, "/posts", &resp, apiclient.WithQuery(q)); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	result := &ListResult{
		Posts:      resp.Posts,
		Page:       params.Page,
		TotalPages: resp.TotalPages,
	}
	if result.Posts == nil {
		result.Posts = []Post{}
	}
	if result.TotalPages < 1 {
		result.TotalPages = 1
	}
	// A page past the end comes back clamped so 1 <= Page <= TotalPages.
	result.Page = min(result.Page, result.TotalPages)
	return result, nil
}

// Get fetches one post by id or slug, with its category and comments.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*Post, error) {
	if err := requireID("id", idOrSlug); err != nil {
		return nil, err
	}

	var resp singleResponse
	if err := s.api.Get(ctx, postPath(idOrSlug), &resp); err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, idOrSlug, err)
		}
		return nil, fmt.Errorf("get post %s: %w", idOrSlug, err)
	}
	return &resp.Post, nil
}

// Create submits a new post as multipart form data. Missing required
// fields are reported by the backend. An empty Author is filled from the
// session.
func (s *Service) Create(ctx context.Context, form PostForm) (*Post, error) {
	if form.Author == "" && s.sessions != nil {
		form.Author = s.sessions.UserID()
	}

	body := apiclient.NewMultipart().
		Field("title", form.Title).
		Field("content", form.Content).
		Field("category", form.Category).
		Field("author", form.Author).
		Field("tags", JoinTags(form.Tags, ","))
	if form.Image != nil {
		body.File("image", form.Image.Filename, form.Image.ContentType, form.Image.Data)
	}

	var resp singleResponse
	if err := s.api.Post(ctx, "/posts", body, &resp); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created", "post_id", resp.Post.ID, "has_image", form.Image != nil)
	return &resp.Post, nil
}

// Update overwrites a post with the full form. There is no partial patch:
// every field is sent, and featuredImage is either the new file or
// KeepImage.
func (s *Service) Update(ctx context.Context, id string, form PostForm) (*Post, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	body := apiclient.NewMultipart().
		Field("title", form.Title).
		Field("content", form.Content).
		Field("category", form.Category).
		Field("tags", JoinTags(form.Tags, ","))
	if form.Author != "" {
		body.Field("author", form.Author)
	}
	if form.Image != nil {
		body.File("featuredImage", form.Image.Filename, form.Image.ContentType, form.Image.Data)
	} else {
		body.Field("featuredImage", KeepImage)
	}

	var resp singleResponse
	if err := s.api.Put(ctx, postPath(id), body, &resp); err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}

	s.logger.Info("post updated", "post_id", id, "image_replaced", form.Image != nil)
	return &resp.Post, nil
}

// Delete removes a post and returns the backend's confirmation message.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	if err := requireID("id", id); err != nil {
		return "", err
	}
	if err := s.requireSession(); err != nil {
		return "", err
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := s.api.Delete(ctx, postPath(id), &resp); err != nil {
		return "", fmt.Errorf("delete post %s: %w", id, err)
	}

	s.logger.Info("post deleted", "post_id", id)
	return resp.Message, nil
}

// ToggleLike flips the current user's like on a post.
func (s *Service) ToggleLike(ctx context.Context, id string) (*LikeResult, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	var resp likeJSON
	if err := s.api.Put(ctx, postPath(id)+"/like", nil, &resp); err != nil {
		return nil, fmt.Errorf("like post %s: %w", id, err)
	}

	result := &LikeResult{Liked: resp.Liked, Likes: []string(resp.Likes)}
	if result.Likes == nil && resp.Post != nil && resp.Post.Likes != nil {
		result.Likes = resp.Post.Likes
	}
	return result, nil
}

// AddComment posts a comment. Blank content fails locally.
func (s *Service) AddComment(ctx context.Context, postID, content string) error {
	if err := requireID("postId", postID); err != nil {
		return err
	}
	content, err := ValidateComment(content)
	if err != nil {
		return err
	}
	if err := s.requireSession(); err != nil {
		return err
	}

	if err := s.api.Post(ctx, postPath(postID)+"/comment", map[string]string{"content": content}, nil); err != nil {
		return fmt.Errorf("add comment to %s: %w", postID, err)
	}
	return nil
}

// DeleteComment removes a comment. Only the comment's author or the post's
// author may do this; the backend decides.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := requireID("postId", postID); err != nil {
		return err
	}
	if err := requireID("commentId", commentID); err != nil {
		return err
	}
	if err := s.requireSession(); err != nil {
		return err
	}

	path := postPath(postID) + "/comment/" + url.PathEscape(commentID)
	if err := s.api.Delete(ctx, path, nil); err != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, err)
	}
	return nil
}

// Search runs a full text query over all posts.
func (s *Service) Search(ctx context.Context, query string) ([]Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewValidationError("q", "search query is required")
	}

	var resp listResponse
	err := s.api.Get(ctx, "/posts/search", &resp, apiclient.WithQuery(url.Values{"q": {query}}))
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if resp.Posts == nil {
		return []Post{}, nil
	}
	return resp.Posts, nil
}

// Mine lists the logged-in user's own posts.
func (s *Service) Mine(ctx context.Context) ([]Post, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	var resp listResponse
	if err := s.api.Get(ctx, "/posts/my-posts", &resp); err != nil {
		return nil, fmt.Errorf("list my posts: %w", err)
	}
	if resp.Posts == nil {
		return []Post{}, nil
	}
	return resp.Posts, nil
}

// ValidateComment trims content and checks it is non-empty and within
// MaxCommentGraphemes. It returns the trimmed text.
func ValidateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrContentEmpty
	}
	if n := uniseg.GraphemeClusterCount(content); n > MaxCommentGraphemes {
		return "", fmt.Errorf("%w: %d characters (max %d)", ErrContentTooLong, n, MaxCommentGraphemes)
	}
	return content, nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

func postPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}
