package mockapi

import (
	"errors"
	"net/http"
	"strings"
)

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	cats := s.store.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	c, err := s.store.CreateCategory(name)
	if errors.Is(err, ErrCategoryExists) {
		writeError(w, http.StatusBadRequest, "Category already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusCreated, categoryView{ID: c.ID, Name: c.Name})
}
