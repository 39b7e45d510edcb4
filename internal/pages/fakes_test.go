package pages

import (
	"context"
	"errors"
	"sync"

	"Inkwell/internal/core/auth"
	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/images"
	"Inkwell/internal/core/posts"
)

var errNotStubbed = errors.New("not stubbed")

// fakePosts is a PostService whose behaviour is set per test.
type fakePosts struct {
	mu    sync.Mutex
	calls map[string]int

	list          func(ctx context.Context, params posts.ListParams) (*posts.ListResult, error)
	get           func(ctx context.Context, id string) (*posts.Post, error)
	create        func(ctx context.Context, form posts.PostForm) (*posts.Post, error)
	update        func(ctx context.Context, id string, form posts.PostForm) (*posts.Post, error)
	deletePost    func(ctx context.Context, id string) (string, error)
	toggleLike    func(ctx context.Context, id string) (*posts.LikeResult, error)
	addComment    func(ctx context.Context, postID, content string) error
	deleteComment func(ctx context.Context, postID, commentID string) error
}

func (f *fakePosts) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakePosts) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePosts) List(ctx context.Context, params posts.ListParams) (*posts.ListResult, error) {
	f.record("List")
	if f.list == nil {
		return nil, errNotStubbed
	}
	return f.list(ctx, params)
}

func (f *fakePosts) Get(ctx context.Context, id string) (*posts.Post, error) {
	f.record("Get")
	if f.get == nil {
		return nil, errNotStubbed
	}
	return f.get(ctx, id)
}

func (f *fakePosts) Create(ctx context.Context, form posts.PostForm) (*posts.Post, error) {
	f.record("Create")
	if f.create == nil {
		return nil, errNotStubbed
	}
	return f.create(ctx, form)
}

func (f *fakePosts) Update(ctx context.Context, id string, form posts.PostForm) (*posts.Post, error) {
	f.record("Update")
	if f.update == nil {
		return nil, errNotStubbed
	}
	return f.update(ctx, id, form)
}

func (f *fakePosts) Delete(ctx context.Context, id string) (string, error) {
	f.record("Delete")
	if f.deletePost == nil {
		return "", errNotStubbed
	}
	return f.deletePost(ctx, id)
}

func (f *fakePosts) ToggleLike(ctx context.Context, id string) (*posts.LikeResult, error) {
	f.record("ToggleLike")
	if f.toggleLike == nil {
		return nil, errNotStubbed
	}
	return f.toggleLike(ctx, id)
}

func (f *fakePosts) AddComment(ctx context.Context, postID, content string) error {
	f.record("AddComment")
	if f.addComment == nil {
		return errNotStubbed
	}
	return f.addComment(ctx, postID, content)
}

func (f *fakePosts) DeleteComment(ctx context.Context, postID, commentID string) error {
	f.record("DeleteComment")
	if f.deleteComment == nil {
		return errNotStubbed
	}
	return f.deleteComment(ctx, postID, commentID)
}

type fakeCategories struct {
	list func(ctx context.Context) ([]categories.Category, error)
}

func (f *fakeCategories) List(ctx context.Context) ([]categories.Category, error) {
	return f.list(ctx)
}

type fakeAuth struct {
	login    func(ctx context.Context, email, password string) (*auth.Response, error)
	register func(ctx context.Context, name, email, password string) (*auth.Response, error)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*auth.Response, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (*auth.Response, error) {
	return f.register(ctx, name, email, password)
}

type fakeViewer struct {
	token  string
	userID string
}

func (v fakeViewer) Token() string  { return v.token }
func (v fakeViewer) UserID() string { return v.userID }

var (
	anonymous = fakeViewer{}
	ada       = fakeViewer{token: "tok-ada", userID: "ada"}
	bob       = fakeViewer{token: "tok-bob", userID: "bob"}
)

type recordingNav struct {
	mu     sync.Mutex
	routes []Route
}

func (n *recordingNav) Navigate(to Route) {
	n.mu.Lock()
	n.routes = append(n.routes, to)
	n.mu.Unlock()
}

func (n *recordingNav) last() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

type fakeImages struct{}

func (fakeImages) Load(path string) (*images.Upload, error) {
	if path == "" {
		return nil, images.ErrUnsupportedFormat
	}
	return &images.Upload{Filename: path, ContentType: "image/png", Data: []byte("img")}, nil
}

func declineAll(string) bool { return false }
