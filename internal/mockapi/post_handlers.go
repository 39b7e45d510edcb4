package mockapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// keepImageMarker is sent in place of a file when an update keeps the
// current featured image.
const keepImageMarker = "featuredImage"

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

var errNotImage = errors.New("only image files are allowed")

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	limit := min(queryInt(q.Get("limit"), defaultPageSize), maxPageSize)

	all := s.store.ListPosts(postQuery{Search: q.Get("search"), CategoryID: q.Get("category")})
	totalPages := max(1, (len(all)+limit-1)/limit)

	// Past the last page the list is empty; the product below cannot overflow.
	start := len(all)
	if page <= totalPages {
		start = (page - 1) * limit
	}
	end := min(start+limit, len(all))

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":       s.store.viewPosts(all[start:end]),
		"totalPages":  totalPages,
		"currentPage": page,
		"total":       len(all),
	})
}

func (s *Server) handleSearchPosts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	found := s.store.ListPosts(postQuery{Search: query})
	writeJSON(w, http.StatusOK, map[string]any{"posts": s.store.viewPosts(found)})
}

func (s *Server) handleMyPosts(w http.ResponseWriter, r *http.Request) {
	mine := s.store.ListPosts(postQuery{AuthorID: UserID(r.Context())})
	writeJSON(w, http.StatusOK, map[string]any{"posts": s.store.viewPosts(mine)})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Post(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, s.store.viewPost(p))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}

	p := postRecord{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Content:  r.FormValue("content"),
		Tags:     splitTags(r.FormValue("tags")),
		AuthorID: UserID(r.Context()),
	}
	if p.Title == "" || strings.TrimSpace(p.Content) == "" {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}
	if !s.setCategory(w, &p, r.FormValue("category")) {
		return
	}

	img, err := s.saveImage(r, "image")
	if err != nil {
		s.writeImageError(w, err)
		return
	}
	p.FeaturedImage = img

	created := s.store.CreatePost(p)
	s.logger.Info("post created", "post_id", created.ID, "author", created.AuthorID)
	writeJSON(w, http.StatusCreated, s.store.viewPost(&created))
}

// handleUpdatePost replaces every field. The featured image is replaced by
// an uploaded file and kept when the marker is sent or the field is absent.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" || strings.TrimSpace(content) == "" {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}
	var probe postRecord
	if !s.setCategory(w, &probe, r.FormValue("category")) {
		return
	}

	img, err := s.saveImage(r, "featuredImage")
	if err != nil {
		s.writeImageError(w, err)
		return
	}
	marker, hasMarker := r.MultipartForm.Value["featuredImage"]
	clearImage := img == "" && hasMarker && len(marker) > 0 && marker[0] == ""

	updated, err := s.store.UpdatePost(chi.URLParam(r, "id"), UserID(r.Context()), func(p *postRecord) {
		p.Title = title
		p.Content = content
		p.CategoryID = probe.CategoryID
		p.Tags = splitTags(r.FormValue("tags"))
		switch {
		case img != "":
			p.FeaturedImage = img
		case clearImage:
			p.FeaturedImage = ""
		}
	})
	switch {
	case errors.Is(err, ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
		return
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized to edit this post")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, s.store.viewPost(updated))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeletePost(chi.URLParam(r, "id"), UserID(r.Context()))
	switch {
	case errors.Is(err, ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized to delete this post")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
	}
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, likes, err := s.store.ToggleLike(chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": likes})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	p, err := s.store.AddComment(chi.URLParam(r, "id"), UserID(r.Context()), content)
	if err != nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.viewPost(p))
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteComment(chi.URLParam(r, "id"), chi.URLParam(r, "commentID"), UserID(r.Context()))
	switch {
	case errors.Is(err, ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized to delete this comment")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.store.Upload(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", u.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(u.Data)))
	_, _ = w.Write(u.Data)
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Expected multipart form data")
		return false
	}
	return true
}

func (s *Server) setCategory(w http.ResponseWriter, p *postRecord, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return true
	}
	if _, err := s.store.Category(id); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return false
	}
	p.CategoryID = id
	return true
}

// saveImage stores the file in field, if any, and returns its public path.
func (s *Server) saveImage(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	contentType := imageContentType(header, data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errNotImage
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	s.store.SaveUpload(name, contentType, data)
	return "/uploads/" + name, nil
}

func (s *Server) writeImageError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNotImage) {
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}
	s.logger.Error("failed to read upload", "error", err)
	writeError(w, http.StatusBadRequest, "Invalid file upload")
}

func imageContentType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}

func splitTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func queryInt(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
