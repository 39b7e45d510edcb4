package pages

import (
	"context"

	"Inkwell/internal/core/auth"
	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/images"
	"Inkwell/internal/core/posts"
)

// PostService is implemented by *posts.Service.
type PostService interface {
	List(ctx context.Context, params posts.ListParams) (*posts.ListResult, error)
	Get(ctx context.Context, idOrSlug string) (*posts.Post, error)
	Create(ctx context.Context, form posts.PostForm) (*posts.Post, error)
	Update(ctx context.Context, id string, form posts.PostForm) (*posts.Post, error)
	Delete(ctx context.Context, id string) (string, error)
	ToggleLike(ctx context.Context, id string) (*posts.LikeResult, error)
	AddComment(ctx context.Context, postID, content string) error
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// CategoryService is implemented by *categories.Service.
type CategoryService interface {
	List(ctx context.Context) ([]categories.Category, error)
}

// AuthService is implemented by *auth.Service.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*auth.Response, error)
	Login(ctx context.Context, email, password string) (*auth.Response, error)
}

// Viewer exposes the current identity. *session.Store implements it.
type Viewer interface {
	Token() string
	UserID() string
}

// ImageLoader is implemented by *images.Preparer.
type ImageLoader interface {
	Load(path string) (*images.Upload, error)
}
