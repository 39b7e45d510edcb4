package pages

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/core/posts"
	"Inkwell/internal/session"
)

func pageOf(ids ...string) []posts.Post {
	out := make([]posts.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, posts.Post{ID: id, Title: "title " + id})
	}
	return out
}

func ids(list []posts.Post) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestListPage_Load(t *testing.T) {
	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		assert.Equal(t, posts.ListParams{Page: 1, Limit: 6}, params)
		return &posts.ListResult{Posts: pageOf("a", "b"), Page: 1, TotalPages: 4}, nil
	}}

	page := NewListPage(svc, anonymous, nil, 6, nil)
	require.NoError(t, page.Load(context.Background()))

	st := page.State()
	assert.Equal(t, []string{"a", "b"}, ids(st.Items))
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 4, st.TotalPages)
	assert.False(t, st.Loading)
	assert.True(t, st.Loaded)
	assert.Empty(t, st.Error)
}

func TestListPage_LoadError(t *testing.T) {
	svc := &fakePosts{list: func(context.Context, posts.ListParams) (*posts.ListResult, error) {
		return nil, &apiclient.Error{Kind: apiclient.ErrServer, StatusCode: http.StatusInternalServerError}
	}}

	page := NewListPage(svc, anonymous, nil, 6, nil)
	err := page.Load(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrServer)
	assert.Equal(t, MsgFetchPostsFailed, page.State().Error)
	assert.False(t, page.State().Loading)
}

func TestListPage_StaleSearchResponseIsDiscarded(t *testing.T) {
	catsStarted := make(chan struct{})
	releaseCats := make(chan struct{})

	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		switch params.Search {
		case "cats":
			close(catsStarted)
			<-releaseCats
			return &posts.ListResult{Posts: pageOf("cat-1", "cat-2"), Page: params.Page, TotalPages: 2}, nil
		case "dogs":
			return &posts.ListResult{Posts: pageOf("dog-1"), Page: params.Page, TotalPages: 1}, nil
		}
		return &posts.ListResult{Posts: pageOf(), TotalPages: 1}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, page.SetSearch(context.Background(), "cats"))
	}()

	<-catsStarted
	require.NoError(t, page.SetSearch(context.Background(), "dogs"))
	close(releaseCats)
	wg.Wait()

	st := page.State()
	assert.Equal(t, "dogs", st.Search)
	assert.Equal(t, []string{"dog-1"}, ids(st.Items))
	assert.Equal(t, 1, st.TotalPages)
	assert.Equal(t, 1, st.Page)
	assert.False(t, st.Loading)
}

func TestListPage_StalePageResponseIsDiscarded(t *testing.T) {
	page2Started := make(chan struct{})
	releasePage2 := make(chan struct{})

	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		if params.Page == 2 {
			close(page2Started)
			<-releasePage2
		}
		return &posts.ListResult{Posts: pageOf(fmt.Sprintf("p%d", params.Page)), Page: params.Page, TotalPages: 5}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)
	require.NoError(t, page.Load(context.Background()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, page.SetPage(context.Background(), 2))
	}()
	<-page2Started
	require.NoError(t, page.SetPage(context.Background(), 3))
	close(releasePage2)
	<-done

	st := page.State()
	assert.Equal(t, 3, st.Page)
	assert.Equal(t, []string{"p3"}, ids(st.Items))
}

func TestListPage_SearchResetsPage(t *testing.T) {
	var seen []posts.ListParams
	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		seen = append(seen, params)
		return &posts.ListResult{Posts: pageOf("x"), Page: params.Page, TotalPages: 5}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)
	ctx := context.Background()

	require.NoError(t, page.Load(ctx))
	require.NoError(t, page.SetPage(ctx, 3))
	require.NoError(t, page.SetSearch(ctx, "  golang "))

	require.Len(t, seen, 3)
	assert.Equal(t, 3, seen[1].Page)
	assert.Equal(t, posts.ListParams{Page: 1, Limit: 6, Search: "golang"}, seen[2])
	assert.Equal(t, 1, page.State().Page)
}

func TestListPage_PageBounds(t *testing.T) {
	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		return &posts.ListResult{Posts: pageOf("x"), Page: params.Page, TotalPages: 3}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)
	ctx := context.Background()
	require.NoError(t, page.Load(ctx))

	require.NoError(t, page.PrevPage(ctx))
	assert.Equal(t, 1, page.State().Page)

	require.NoError(t, page.SetPage(ctx, 99))
	assert.Equal(t, 3, page.State().Page)

	require.NoError(t, page.NextPage(ctx))
	assert.Equal(t, 3, page.State().Page)

	require.NoError(t, page.SetPage(ctx, -4))
	assert.Equal(t, 1, page.State().Page)
}

func TestListPage_ClampsWhenServerHasFewerPages(t *testing.T) {
	var requested []int
	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		requested = append(requested, params.Page)
		if params.Page > 2 {
			return &posts.ListResult{Posts: []posts.Post{}, Page: params.Page, TotalPages: 2}, nil
		}
		return &posts.ListResult{Posts: pageOf("last"), Page: params.Page, TotalPages: 2}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)

	require.NoError(t, page.SetPage(context.Background(), 7))

	assert.Equal(t, []int{7, 2}, requested)
	st := page.State()
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, []string{"last"}, ids(st.Items))
}

func TestListPage_FollowsPageClampedByService(t *testing.T) {
	var requested []int
	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		requested = append(requested, params.Page)
		if params.Page > 3 {
			return &posts.ListResult{Posts: []posts.Post{}, Page: 3, TotalPages: 3}, nil
		}
		return &posts.ListResult{Posts: pageOf("third"), Page: params.Page, TotalPages: 3}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)

	require.NoError(t, page.SetPage(context.Background(), 9))

	assert.Equal(t, []int{9, 3}, requested)
	st := page.State()
	assert.Equal(t, 3, st.Page)
	assert.Equal(t, 3, st.TotalPages)
	assert.Equal(t, []string{"third"}, ids(st.Items))
}

func TestListPage_TagFilterIsLocal(t *testing.T) {
	svc := &fakePosts{list: func(context.Context, posts.ListParams) (*posts.ListResult, error) {
		return &posts.ListResult{Posts: []posts.Post{
			{ID: "1", Tags: []string{"go", "web"}},
			{ID: "2", Tags: []string{"rust"}},
			{ID: "3", Tags: []string{"Go"}},
		}, TotalPages: 1}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)
	require.NoError(t, page.Load(context.Background()))

	page.SelectTag("go")
	assert.Equal(t, []string{"1"}, ids(page.Visible()))
	assert.Len(t, page.State().Items, 3, "filter must not touch loaded items")

	page.ClearTag()
	assert.Equal(t, []string{"1", "2", "3"}, ids(page.Visible()))
	assert.Equal(t, 1, svc.count("List"))
}

func TestListPage_Delete(t *testing.T) {
	svc := &fakePosts{
		list: func(context.Context, posts.ListParams) (*posts.ListResult, error) {
			return &posts.ListResult{Posts: pageOf("a", "b", "c"), TotalPages: 1}, nil
		},
		deletePost: func(_ context.Context, id string) (string, error) {
			assert.Equal(t, "b", id)
			return "Post deleted successfully", nil
		},
	}
	page := NewListPage(svc, ada, nil, 6, nil)
	require.NoError(t, page.Load(context.Background()))

	require.NoError(t, page.Delete(context.Background(), "b"))

	st := page.State()
	assert.Equal(t, []string{"a", "c"}, ids(st.Items))
	assert.Equal(t, "Post deleted successfully", st.Message)
	assert.Equal(t, 1, svc.count("List"), "delete must not re-fetch")
}

func TestListPage_DeleteRequiresSession(t *testing.T) {
	svc := &fakePosts{list: func(context.Context, posts.ListParams) (*posts.ListResult, error) {
		return &posts.ListResult{Posts: pageOf("a"), TotalPages: 1}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)
	require.NoError(t, page.Load(context.Background()))

	err := page.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Equal(t, MsgLoginToDelete, page.State().Error)
	assert.Equal(t, []string{"a"}, ids(page.State().Items))
	assert.Zero(t, svc.count("Delete"))
}

func TestListPage_DeleteDeclined(t *testing.T) {
	svc := &fakePosts{}
	page := NewListPage(svc, ada, ConfirmFunc(declineAll), 6, nil)

	err := page.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, svc.count("Delete"))
}

func TestListPage_DeleteFailureKeepsItem(t *testing.T) {
	svc := &fakePosts{
		list: func(context.Context, posts.ListParams) (*posts.ListResult, error) {
			return &posts.ListResult{Posts: pageOf("a"), TotalPages: 1}, nil
		},
		deletePost: func(context.Context, string) (string, error) {
			return "", &apiclient.Error{Kind: apiclient.ErrForbidden, StatusCode: 403, Message: "Not authorized to delete this post"}
		},
	}
	page := NewListPage(svc, ada, nil, 6, nil)
	require.NoError(t, page.Load(context.Background()))

	err := page.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, apiclient.ErrForbidden)
	assert.Equal(t, "Not authorized to delete this post", page.State().Error)
	assert.Equal(t, []string{"a"}, ids(page.State().Items))
}

func TestListPage_Query(t *testing.T) {
	var seen []posts.ListParams
	svc := &fakePosts{list: func(_ context.Context, params posts.ListParams) (*posts.ListResult, error) {
		seen = append(seen, params)
		return &posts.ListResult{Posts: pageOf("x"), Page: params.Page, TotalPages: 4}, nil
	}}
	page := NewListPage(svc, anonymous, nil, 6, nil)

	require.NoError(t, page.Query(context.Background(), ListQuery{Search: " go ", Category: "c1", Page: 2}))

	require.Len(t, seen, 1)
	assert.Equal(t, posts.ListParams{Page: 2, Limit: 6, Search: "go", Category: "c1"}, seen[0])
	st := page.State()
	assert.Equal(t, "go", st.Search)
	assert.Equal(t, "c1", st.Category)
	assert.Equal(t, 2, st.Page)
}
