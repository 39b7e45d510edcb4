package posts

import (
	"context"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/session"
)

// API is the slice of apiclient.Client the service needs.
type API interface {
	Get(ctx context.Context, path string, out any, opts ...apiclient.RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...apiclient.RequestOption) error
	Put(ctx context.Context, path string, body, out any, opts ...apiclient.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...apiclient.RequestOption) error
}

// Sessions reports the logged-in identity. *session.Store implements it.
type Sessions interface {
	Require() (*session.Session, error)
	UserID() string
}
