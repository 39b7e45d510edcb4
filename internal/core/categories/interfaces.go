package categories

import (
	"context"

	"Inkwell/internal/apiclient"
)

// API is the slice of apiclient.Client the service needs.
type API interface {
	Get(ctx context.Context, path string, out any, opts ...apiclient.RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...apiclient.RequestOption) error
}

// Viewer identifies whose category list is cached. An empty id is the
// anonymous viewer.
type Viewer interface {
	UserID() string
}
