package pages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/core/posts"
	"Inkwell/internal/core/users"
	"Inkwell/internal/kv"
	"Inkwell/internal/session"
)

func samplePost(id string) *posts.Post {
	return &posts.Post{
		ID:      id,
		Title:   "Post " + id,
		Content: "body",
		Author:  users.Ref{ID: "ada", Name: "Ada"},
		Likes:   []string{"carol"},
		Comments: []posts.Comment{
			{ID: "c1", Content: "first", User: users.Ref{ID: "bob"}},
			{ID: "c2", Content: "second", User: users.Ref{ID: "carol"}},
		},
	}
}

func loadedDetail(t *testing.T, svc *fakePosts, viewer Viewer, confirm Confirmer, nav Navigator) *DetailPage {
	t.Helper()
	if svc.get == nil {
		svc.get = func(_ context.Context, id string) (*posts.Post, error) { return samplePost(id), nil }
	}
	page := NewDetailPage(svc, viewer, confirm, nav, nil)
	require.NoError(t, page.Load(context.Background(), "p1"))
	return page
}

func TestDetailPage_Load(t *testing.T) {
	page := loadedDetail(t, &fakePosts{}, anonymous, nil, nil)

	st := page.State()
	require.NotNil(t, st.Post)
	assert.Equal(t, "p1", st.ID)
	assert.Equal(t, "Post p1", st.Post.Title)
	assert.False(t, st.Loading)
}

func TestDetailPage_LoadNotFound(t *testing.T) {
	svc := &fakePosts{get: func(context.Context, string) (*posts.Post, error) {
		return nil, &apiclient.Error{Kind: apiclient.ErrNotFound, StatusCode: 404, Message: "Post not found"}
	}}
	page := NewDetailPage(svc, anonymous, nil, nil, nil)

	err := page.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, "Post not found", page.State().Error)
	assert.Nil(t, page.State().Post)
}

func TestDetailPage_StaleLoadIsDiscarded(t *testing.T) {
	aStarted := make(chan struct{})
	releaseA := make(chan struct{})
	svc := &fakePosts{get: func(_ context.Context, id string) (*posts.Post, error) {
		if id == "a" {
			close(aStarted)
			<-releaseA
		}
		return samplePost(id), nil
	}}
	page := NewDetailPage(svc, anonymous, nil, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, page.Load(context.Background(), "a"))
	}()
	<-aStarted
	require.NoError(t, page.Load(context.Background(), "b"))
	close(releaseA)
	<-done

	st := page.State()
	assert.Equal(t, "b", st.ID)
	require.NotNil(t, st.Post)
	assert.Equal(t, "b", st.Post.ID)
}

func TestDetailPage_Permissions(t *testing.T) {
	tests := []struct {
		name      string
		viewer    fakeViewer
		canEdit   bool
		deletable map[string]bool
	}{
		{"anonymous", anonymous, false, map[string]bool{"c1": false, "c2": false}},
		{"post author", ada, true, map[string]bool{"c1": true, "c2": true}},
		{"comment author", bob, false, map[string]bool{"c1": true, "c2": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := loadedDetail(t, &fakePosts{}, tt.viewer, nil, nil)
			assert.Equal(t, tt.canEdit, page.CanEdit())
			for id, want := range tt.deletable {
				assert.Equal(t, want, page.CanDeleteComment(id), id)
			}
			assert.False(t, page.CanDeleteComment("nope"))
		})
	}
}

func TestDetailPage_Edit(t *testing.T) {
	nav := &recordingNav{}
	page := loadedDetail(t, &fakePosts{}, ada, nil, nav)
	assert.True(t, page.Edit())
	assert.Equal(t, RouteEditPost("p1"), nav.last())

	nav2 := &recordingNav{}
	other := loadedDetail(t, &fakePosts{}, bob, nil, nav2)
	assert.False(t, other.Edit())
	assert.Empty(t, nav2.routes)
}

func TestDetailPage_ToggleLikeRequiresSession(t *testing.T) {
	svc := &fakePosts{}
	page := loadedDetail(t, svc, anonymous, nil, nil)

	err := page.ToggleLike(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Equal(t, MsgLoginToLike, page.State().Error)
	assert.Zero(t, svc.count("ToggleLike"))
}

func TestDetailPage_ToggleLikeTwiceRestoresState(t *testing.T) {
	svc := &fakePosts{toggleLike: func(context.Context, string) (*posts.LikeResult, error) {
		return &posts.LikeResult{}, nil
	}}
	page := loadedDetail(t, svc, bob, nil, nil)
	ctx := context.Background()
	before := page.State().Post.Likes

	require.NoError(t, page.ToggleLike(ctx))
	assert.True(t, page.Liked())
	assert.ElementsMatch(t, []string{"carol", "bob"}, page.State().Post.Likes)

	require.NoError(t, page.ToggleLike(ctx))
	assert.False(t, page.Liked())
	assert.ElementsMatch(t, before, page.State().Post.Likes)
	assert.Equal(t, 2, svc.count("ToggleLike"))
}

func TestDetailPage_ToggleLikePrefersServerLikes(t *testing.T) {
	svc := &fakePosts{toggleLike: func(context.Context, string) (*posts.LikeResult, error) {
		return &posts.LikeResult{Likes: []string{"bob", "dave", "erin"}}, nil
	}}
	page := loadedDetail(t, svc, bob, nil, nil)

	require.NoError(t, page.ToggleLike(context.Background()))
	assert.Equal(t, []string{"bob", "dave", "erin"}, page.State().Post.Likes)
	assert.True(t, page.Liked())
}

func TestDetailPage_ToggleLikeUsesVerdict(t *testing.T) {
	liked := false
	svc := &fakePosts{toggleLike: func(context.Context, string) (*posts.LikeResult, error) {
		return &posts.LikeResult{Liked: &liked}, nil
	}}
	// carol already likes the post; the server confirms the unlike.
	page := loadedDetail(t, svc, fakeViewer{token: "t", userID: "carol"}, nil, nil)

	require.NoError(t, page.ToggleLike(context.Background()))
	assert.False(t, page.Liked())
	assert.Empty(t, page.State().Post.Likes)
}

func TestDetailPage_ToggleLikeFailureLeavesLikes(t *testing.T) {
	svc := &fakePosts{toggleLike: func(context.Context, string) (*posts.LikeResult, error) {
		return nil, &apiclient.Error{Kind: apiclient.ErrServer, StatusCode: 500}
	}}
	page := loadedDetail(t, svc, bob, nil, nil)

	err := page.ToggleLike(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrServer)
	assert.Equal(t, MsgLikeFailed, page.State().Error)
	assert.Equal(t, []string{"carol"}, page.State().Post.Likes)
}

func TestDetailPage_ToggleLikeGate(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := &fakePosts{toggleLike: func(context.Context, string) (*posts.LikeResult, error) {
		close(started)
		<-release
		return &posts.LikeResult{}, nil
	}}
	page := loadedDetail(t, svc, bob, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, page.ToggleLike(context.Background()))
	}()
	<-started
	assert.True(t, page.Liking())
	assert.ErrorIs(t, page.ToggleLike(context.Background()), ErrSubmitInProgress)
	close(release)
	<-done

	assert.False(t, page.Liking())
	assert.Equal(t, 1, svc.count("ToggleLike"))
}

func TestDetailPage_AddCommentValidation(t *testing.T) {
	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"empty", "", MsgCommentEmpty},
		{"whitespace", "  \n\t ", MsgCommentEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePosts{}
			page := loadedDetail(t, svc, bob, nil, nil)

			err := page.AddComment(context.Background(), tt.text)
			assert.ErrorIs(t, err, posts.ErrContentEmpty)
			assert.Equal(t, tt.msg, page.State().Error)
			assert.Zero(t, svc.count("AddComment"))
		})
	}
}

func TestDetailPage_AddCommentRefetches(t *testing.T) {
	var added string
	svc := &fakePosts{}
	svc.addComment = func(_ context.Context, postID, content string) error {
		assert.Equal(t, "p1", postID)
		added = content
		return nil
	}
	svc.get = func(_ context.Context, id string) (*posts.Post, error) {
		p := samplePost(id)
		if added != "" {
			p.Comments = append(p.Comments, posts.Comment{ID: "c3", Content: added, User: users.Ref{ID: "bob"}})
		}
		return p, nil
	}
	page := loadedDetail(t, svc, bob, nil, nil)

	require.NoError(t, page.AddComment(context.Background(), "nice post"))

	st := page.State()
	assert.Empty(t, st.Draft)
	assert.Len(t, st.Post.Comments, 3)
	assert.Equal(t, 2, svc.count("Get"))
}

func TestDetailPage_AddCommentFailureKeepsDraft(t *testing.T) {
	svc := &fakePosts{addComment: func(context.Context, string, string) error {
		return &apiclient.Error{Kind: apiclient.ErrValidation, StatusCode: 400, Message: "Comment content is required"}
	}}
	page := loadedDetail(t, svc, bob, nil, nil)

	err := page.AddComment(context.Background(), "draft text")
	assert.ErrorIs(t, err, apiclient.ErrValidation)
	st := page.State()
	assert.Equal(t, "draft text", st.Draft)
	assert.Equal(t, "Comment content is required", st.Error)
	assert.Equal(t, 1, svc.count("Get"))
}

func TestDetailPage_DeleteComment(t *testing.T) {
	svc := &fakePosts{deleteComment: func(_ context.Context, postID, commentID string) error {
		assert.Equal(t, "p1", postID)
		assert.Equal(t, "c1", commentID)
		return nil
	}}
	page := loadedDetail(t, svc, bob, nil, nil)

	require.NoError(t, page.DeleteComment(context.Background(), "c1"))
	assert.Equal(t, 1, svc.count("DeleteComment"))
	assert.Equal(t, 2, svc.count("Get"))
}

func TestDetailPage_DeleteCommentRefused(t *testing.T) {
	t.Run("not permitted", func(t *testing.T) {
		svc := &fakePosts{}
		page := loadedDetail(t, svc, bob, nil, nil)

		err := page.DeleteComment(context.Background(), "c2")
		assert.ErrorIs(t, err, ErrNotPermitted)
		assert.Equal(t, MsgCannotDeleteReply, page.State().Error)
		assert.Zero(t, svc.count("DeleteComment"))
	})

	t.Run("declined", func(t *testing.T) {
		svc := &fakePosts{}
		page := loadedDetail(t, svc, ada, ConfirmFunc(declineAll), nil)

		err := page.DeleteComment(context.Background(), "c2")
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Zero(t, svc.count("DeleteComment"))
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := &fakePosts{}
		page := loadedDetail(t, svc, anonymous, nil, nil)

		err := page.DeleteComment(context.Background(), "c1")
		assert.ErrorIs(t, err, session.ErrNotAuthenticated)
		assert.Zero(t, svc.count("DeleteComment"))
	})
}

// An expired token clears the session and redirects before the view sees
// the error.
func TestDetailPage_ExpiredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"_id":"p1","title":"Hello","author":"ada","likes":[]}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token expired"}`))
		}
	}))
	defer srv.Close()

	store := session.NewStore(kv.NewMemory(), nil)
	require.NoError(t, store.Set(session.Session{Token: "stale", UserID: "bob"}))

	nav := &recordingNav{}
	var clearedFirst bool
	redirect := func() {
		clearedFirst = store.Token() == ""
		nav.Navigate(RouteLogin)
	}
	client, err := apiclient.New(srv.URL, store,
		apiclient.WithRetry(0, 0, 0),
		apiclient.WithUnauthorizedHandler(session.NewInvalidator(store, redirect, nil)))
	require.NoError(t, err)

	page := NewDetailPage(posts.NewService(client, store, nil), store, nil, nav, nil)
	require.NoError(t, page.Load(context.Background(), "p1"))

	err = page.ToggleLike(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrAuthExpired)
	assert.True(t, clearedFirst)
	assert.Equal(t, RouteLogin, nav.last())
	assert.Empty(t, store.Token())
	assert.Equal(t, "Token expired", page.State().Error)
	assert.False(t, page.Liked())
}
