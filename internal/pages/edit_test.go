package pages

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/posts"
	"Inkwell/internal/core/users"
)

func editablePost(id string) *posts.Post {
	return &posts.Post{
		ID:            id,
		Title:         "Original",
		Content:       "Body",
		Author:        users.Ref{ID: "ada"},
		Category:      categories.Ref{ID: "c1", Name: "Tech"},
		Tags:          []string{"a", "b"},
		FeaturedImage: "/uploads/cover.jpg",
	}
}

func TestEditPage_LoadRunsInParallel(t *testing.T) {
	var inFlight, peak atomic.Int32
	track := func() func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return func() { inFlight.Add(-1) }
	}

	svc := &fakePosts{get: func(_ context.Context, id string) (*posts.Post, error) {
		defer track()()
		return editablePost(id), nil
	}}
	cats := &fakeCategories{list: func(context.Context) ([]categories.Category, error) {
		defer track()()
		return []categories.Category{{ID: "c1", Name: "Tech"}}, nil
	}}
	page := NewEditPage(svc, cats, nil, nil, nil)

	require.NoError(t, page.Load(context.Background(), "p1"))
	assert.EqualValues(t, 2, peak.Load())

	st := page.State()
	assert.True(t, st.Loaded)
	assert.Equal(t, "Original", st.Title)
	assert.Equal(t, "Body", st.Content)
	assert.Equal(t, "c1", st.Category)
	assert.Equal(t, "a, b", st.Tags)
	assert.Equal(t, "/uploads/cover.jpg", st.FeaturedImage)
	assert.Equal(t, "ada", st.Author)
	assert.Len(t, st.Categories, 1)
}

func TestEditPage_LoadFailure(t *testing.T) {
	svc := &fakePosts{get: func(context.Context, string) (*posts.Post, error) {
		return nil, &apiclient.Error{Kind: apiclient.ErrNotFound, StatusCode: 404}
	}}
	page := NewEditPage(svc, staticCategories(), nil, nil, nil)

	err := page.Load(context.Background(), "gone")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, MsgLoadPostFailed, page.State().Error)
	assert.False(t, page.State().Loaded)
	assert.ErrorIs(t, page.Submit(context.Background()), ErrNotLoaded)
}

func TestEditPage_Submit(t *testing.T) {
	var (
		gotID   string
		gotForm posts.PostForm
	)
	svc := &fakePosts{
		get: func(_ context.Context, id string) (*posts.Post, error) { return editablePost(id), nil },
		update: func(_ context.Context, id string, form posts.PostForm) (*posts.Post, error) {
			gotID, gotForm = id, form
			return &posts.Post{ID: id, FeaturedImage: "/uploads/new.jpg"}, nil
		},
	}
	nav := &recordingNav{}
	page := NewEditPage(svc, staticCategories(), fakeImages{}, nav, nil)
	require.NoError(t, page.Load(context.Background(), "p1"))

	page.SetTitle("Updated")
	page.SetTags(" a, ,b , ")
	require.NoError(t, page.SetImage("new.png"))
	require.NoError(t, page.Submit(context.Background()))

	assert.Equal(t, "p1", gotID)
	assert.Equal(t, "Updated", gotForm.Title)
	assert.Equal(t, "Body", gotForm.Content, "unchanged fields are resent")
	assert.Equal(t, "c1", gotForm.Category)
	assert.Equal(t, "ada", gotForm.Author)
	assert.Equal(t, []string{"a", "b"}, gotForm.Tags)
	require.NotNil(t, gotForm.Image)

	st := page.State()
	assert.Nil(t, st.NewImage)
	assert.Equal(t, "/uploads/new.jpg", st.FeaturedImage)
	assert.Equal(t, RoutePost("p1"), nav.last())
}

func TestEditPage_SubmitKeepsImageWhenNoneSelected(t *testing.T) {
	var gotForm posts.PostForm
	svc := &fakePosts{
		get: func(_ context.Context, id string) (*posts.Post, error) { return editablePost(id), nil },
		update: func(_ context.Context, _ string, form posts.PostForm) (*posts.Post, error) {
			gotForm = form
			return nil, nil
		},
	}
	page := NewEditPage(svc, staticCategories(), nil, nil, nil)
	require.NoError(t, page.Load(context.Background(), "p1"))
	require.NoError(t, page.Submit(context.Background()))

	assert.Nil(t, gotForm.Image)
	assert.Equal(t, "/uploads/cover.jpg", page.State().FeaturedImage)
}

func TestEditPage_SubmitFailureKeepsForm(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &apiclient.Error{Kind: apiclient.ErrForbidden, StatusCode: 403, Message: "Not authorized to edit this post"}, "Not authorized to edit this post"},
		{"no message", &apiclient.Error{Kind: apiclient.ErrServer, StatusCode: 500}, MsgUpdateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePosts{
				get: func(_ context.Context, id string) (*posts.Post, error) { return editablePost(id), nil },
				update: func(context.Context, string, posts.PostForm) (*posts.Post, error) {
					return nil, tt.err
				},
			}
			nav := &recordingNav{}
			page := NewEditPage(svc, staticCategories(), nil, nav, nil)
			require.NoError(t, page.Load(context.Background(), "p1"))
			page.SetTitle("Draft title")

			require.Error(t, page.Submit(context.Background()))

			st := page.State()
			assert.Equal(t, tt.want, st.Error)
			assert.Equal(t, "Draft title", st.Title)
			assert.Empty(t, nav.routes)
			assert.False(t, page.Saving())
		})
	}
}

func TestEditPage_SubmitGate(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := &fakePosts{
		get: func(_ context.Context, id string) (*posts.Post, error) { return editablePost(id), nil },
		update: func(context.Context, string, posts.PostForm) (*posts.Post, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	page := NewEditPage(svc, staticCategories(), nil, nil, nil)
	require.NoError(t, page.Load(context.Background(), "p1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, page.Submit(context.Background()))
	}()
	<-started
	assert.True(t, page.Saving())
	assert.ErrorIs(t, page.Submit(context.Background()), ErrSubmitInProgress)
	close(release)
	<-done

	assert.Equal(t, 1, svc.count("Update"))
}
