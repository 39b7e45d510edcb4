package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes the backend's error shape: {"message": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

type userView struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type categoryView struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type commentView struct {
	CreatedAt time.Time `json:"createdAt"`
	User      *userView `json:"user"`
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
}

type postView struct {
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Category      *categoryView `json:"category"`
	Author        *userView     `json:"author"`
	ID            string        `json:"_id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Slug          string        `json:"slug"`
	FeaturedImage string        `json:"featuredImage,omitempty"`
	Tags          []string      `json:"tags"`
	Likes         []string      `json:"likes"`
	Comments      []commentView `json:"comments"`
}

func viewUser(u userRecord, withEmail bool) *userView {
	v := &userView{ID: u.ID, Name: u.Name}
	if withEmail {
		v.Email = u.Email
	}
	return v
}

// viewPost populates author, category and comment users the way the
// backend does for single post responses.
func (s *Store) viewPost(p *postRecord) postView {
	v := postView{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Slug:          p.Slug,
		FeaturedImage: p.FeaturedImage,
		Tags:          p.Tags,
		Likes:         p.Likes,
		Comments:      make([]commentView, 0, len(p.Comments)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Likes == nil {
		v.Likes = []string{}
	}
	if u, err := s.User(p.AuthorID); err == nil {
		v.Author = viewUser(u, false)
	}
	if c, err := s.Category(p.CategoryID); err == nil {
		v.Category = &categoryView{ID: c.ID, Name: c.Name}
	}
	for _, c := range p.Comments {
		cv := commentView{ID: c.ID, Content: c.Content, CreatedAt: c.CreatedAt}
		if u, err := s.User(c.UserID); err == nil {
			cv.User = viewUser(u, false)
		}
		v.Comments = append(v.Comments, cv)
	}
	return v
}

func (s *Store) viewPosts(list []*postRecord) []postView {
	out := make([]postView, 0, len(list))
	for _, p := range list {
		out = append(out, s.viewPost(p))
	}
	return out
}
