package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/images"
	"Inkwell/internal/core/users"
)

// KeepImage is sent as the featuredImage field of an update when no new
// file is attached. The backend reads it as "keep the current image".
const KeepImage = "featuredImage"

// MaxCommentGraphemes bounds comment length in user-perceived characters.
const MaxCommentGraphemes = 10000

// Post is a blog post as returned by the backend.
type Post struct {
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Author        users.Ref      `json:"author"`
	Category      categories.Ref `json:"category"`
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Slug          string         `json:"slug,omitempty"`
	FeaturedImage string         `json:"featuredImage,omitempty"`
	Tags          []string       `json:"tags"`
	Likes         []string       `json:"likes"`
	Comments      []Comment      `json:"comments"`
}

type postJSON struct {
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Author        users.Ref      `json:"author"`
	Category      categories.Ref `json:"category"`
	MongoID       string         `json:"_id"`
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Slug          string         `json:"slug"`
	FeaturedImage string         `json:"featuredImage"`
	Tags          tagList        `json:"tags"`
	Likes         idList         `json:"likes"`
	Comments      []Comment      `json:"comments"`
}

// UnmarshalJSON accepts "_id" or "id", tags as an array or a comma joined
// string, and likes as ids or populated user objects.
func (p *Post) UnmarshalJSON(data []byte) error {
	var raw postJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post{
		CreatedAt:     raw.CreatedAt,
		UpdatedAt:     raw.UpdatedAt,
		Author:        raw.Author,
		Category:      raw.Category,
		ID:            raw.ID,
		Title:         raw.Title,
		Content:       raw.Content,
		Slug:          raw.Slug,
		FeaturedImage: raw.FeaturedImage,
		Tags:          []string(raw.Tags),
		Likes:         []string(raw.Likes),
		Comments:      raw.Comments,
	}
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	return nil
}

// HasLiked reports whether userID is in the like set.
func (p *Post) HasLiked(userID string) bool {
	return userID != "" && slices.Contains(p.Likes, userID)
}

// IsAuthor reports whether userID wrote the post.
func (p *Post) IsAuthor(userID string) bool {
	return userID != "" && p.Author.ID == userID
}

// Comment is a reader comment on a post. Comments are never edited.
type Comment struct {
	CreatedAt time.Time `json:"createdAt"`
	User      users.Ref `json:"user"`
	ID        string    `json:"id"`
	Content   string    `json:"content"`
}

type commentJSON struct {
	CreatedAt time.Time `json:"createdAt"`
	User      users.Ref `json:"user"`
	MongoID   string    `json:"_id"`
	ID        string    `json:"id"`
	Content   string    `json:"content"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw commentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Comment{CreatedAt: raw.CreatedAt, User: raw.User, ID: raw.ID, Content: raw.Content}
	if c.ID == "" {
		c.ID = raw.MongoID
	}
	return nil
}

// CanDelete reports whether viewerID may delete the comment: its author or
// the post's author. The backend enforces the same rule.
func (c Comment) CanDelete(viewerID string, post *Post) bool {
	if viewerID == "" {
		return false
	}
	if c.User.ID == viewerID {
		return true
	}
	return post != nil && post.IsAuthor(viewerID)
}

// ListParams selects one page of posts.
type ListParams struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ListResult is one page of posts.
type ListResult struct {
	Posts      []Post
	Page       int
	TotalPages int
}

type listJSON struct {
	Posts       []Post `json:"posts"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	Page        int    `json:"page"`
}

// listResponse accepts {"posts": [...], "totalPages": n} or a bare array.
type listResponse struct {
	listJSON
}

func (l *listResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Post
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		l.listJSON = listJSON{Posts: list, TotalPages: 1}
		return nil
	}
	return json.Unmarshal(data, &l.listJSON)
}

// singleResponse accepts the post itself or {"post": {...}}.
type singleResponse struct {
	Post Post
}

func (s *singleResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Post json.RawMessage `json:"post"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("decode post: %w", err)
	}
	if len(wrapped.Post) > 0 && !bytes.Equal(wrapped.Post, []byte("null")) {
		return json.Unmarshal(wrapped.Post, &s.Post)
	}
	return json.Unmarshal(data, &s.Post)
}

// PostForm is the full field set sent on create and update.
type PostForm struct {
	Image    *images.Upload
	Title    string
	Content  string
	Category string
	Author   string
	Tags     []string
}

// LikeResult is the outcome of a like toggle. Likes is the server's like
// set when the response carried one; Liked is the server's verdict when
// present. Either may be nil.
type LikeResult struct {
	Liked *bool
	Likes []string
}

type likeJSON struct {
	Liked *bool  `json:"liked"`
	Likes idList `json:"likes"`
	Post  *Post  `json:"post"`
}

// tagList decodes ["a","b"] or "a,b".
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTags(s)
	default:
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*t = list
	}
	return nil
}

// idList decodes a list of ids or populated {_id|id} objects. A bare count
// decodes to nil: membership is unknown.
type idList []string

func (l *idList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		var ref users.Ref
		if err := json.Unmarshal(item, &ref); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	*l = ids
	return nil
}
