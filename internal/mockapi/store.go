package mockapi

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Store errors. Handlers map them to HTTP statuses.
var (
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrForbidden        = errors.New("forbidden")
)

type userRecord struct {
	CreatedAt    time.Time
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
}

type categoryRecord struct {
	ID   string
	Name string
}

type commentRecord struct {
	CreatedAt time.Time
	ID        string
	Content   string
	UserID    string
}

type postRecord struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	Title         string
	Content       string
	Slug          string
	CategoryID    string
	AuthorID      string
	FeaturedImage string
	Tags          []string
	Likes         []string
	Comments      []commentRecord
}

func (p *postRecord) clone() *postRecord {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

type uploadRecord struct {
	ContentType string
	Data        []byte
}

// postQuery filters ListPosts.
type postQuery struct {
	Search     string
	CategoryID string
	AuthorID   string
}

// Store is the fake backend's in-memory database.
type Store struct {
	users      map[string]*userRecord
	emails     map[string]string
	categories map[string]*categoryRecord
	posts      map[string]*postRecord
	uploads    map[string]uploadRecord
	now        func() time.Time
	mu         sync.RWMutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*userRecord),
		emails:     make(map[string]string),
		categories: make(map[string]*categoryRecord),
		posts:      make(map[string]*postRecord),
		uploads:    make(map[string]uploadRecord),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateUser(name, email string, hash []byte) (userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.emails[key]; ok {
		return userRecord{}, ErrUserExists
	}
	u := &userRecord{ID: uuid.NewString(), Name: name, Email: email, PasswordHash: hash, CreatedAt: s.now()}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return *u, nil
}

func (s *Store) UserByEmail(email string) (userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return userRecord{}, ErrUserNotFound
	}
	return *s.users[id], nil
}

func (s *Store) User(id string) (userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return userRecord{}, ErrUserNotFound
	}
	return *u, nil
}

// CreateCategory adds a category. Names are unique ignoring case.
func (s *Store) CreateCategory(name string) (categoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return categoryRecord{}, ErrCategoryExists
		}
	}
	c := &categoryRecord{ID: uuid.NewString(), Name: name}
	s.categories[c.ID] = c
	return *c, nil
}

// Categories returns every category sorted by name.
func (s *Store) Categories() []categoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]categoryRecord, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) Category(id string) (categoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return categoryRecord{}, ErrCategoryNotFound
	}
	return *c, nil
}

// CreatePost stores p, assigning its id, slug and timestamps.
func (s *Store) CreatePost(p postRecord) postRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.Slug = slugify(p.Title) + "-" + p.ID[:8]
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if p.Likes == nil {
		p.Likes = []string{}
	}
	s.posts[p.ID] = p.clone()
	return p
}

// Post finds a post by id or slug.
func (s *Store) Post(idOrSlug string) (*postRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.findLocked(idOrSlug)
	if err != nil {
		return nil, err
	}
	return p.clone(), nil
}

func (s *Store) findLocked(idOrSlug string) (*postRecord, error) {
	if p, ok := s.posts[idOrSlug]; ok {
		return p, nil
	}
	for _, p := range s.posts {
		if p.Slug == idOrSlug {
			return p, nil
		}
	}
	return nil, ErrPostNotFound
}

// UpdatePost applies fn to the stored post if userID wrote it.
func (s *Store) UpdatePost(id, userID string, fn func(*postRecord)) (*postRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.findLocked(id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, ErrForbidden
	}
	fn(p)
	p.UpdatedAt = s.now()
	return p.clone(), nil
}

// DeletePost removes a post written by userID.
func (s *Store) DeletePost(id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.findLocked(id)
	if err != nil {
		return err
	}
	if p.AuthorID != userID {
		return ErrForbidden
	}
	delete(s.posts, p.ID)
	return nil
}

// ListPosts returns matching posts, newest first.
func (s *Store) ListPosts(q postQuery) []*postRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	var out []*postRecord
	for _, p := range s.posts {
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if q.AuthorID != "" && p.AuthorID != q.AuthorID {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matches(p *postRecord, search string) bool {
	if strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Content), search) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.EqualFold(tag, search) {
			return true
		}
	}
	return false
}

// ToggleLike adds or removes userID from the post's likes.
func (s *Store) ToggleLike(id, userID string) (liked bool, likes []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.findLocked(id)
	if err != nil {
		return false, nil, err
	}
	if i := slices.Index(p.Likes, userID); i >= 0 {
		p.Likes = slices.Delete(p.Likes, i, i+1)
	} else {
		p.Likes = append(p.Likes, userID)
		liked = true
	}
	return liked, slices.Clone(p.Likes), nil
}

// AddComment appends a comment and returns the updated post.
func (s *Store) AddComment(postID, userID, content string) (*postRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.findLocked(postID)
	if err != nil {
		return nil, err
	}
	p.Comments = append(p.Comments, commentRecord{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    userID,
		CreatedAt: s.now(),
	})
	return p.clone(), nil
}

// DeleteComment removes a comment. The comment's author and the post's
// author may delete it.
func (s *Store) DeleteComment(postID, commentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.findLocked(postID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(p.Comments, func(c commentRecord) bool { return c.ID == commentID })
	if i < 0 {
		return ErrCommentNotFound
	}
	if p.Comments[i].UserID != userID && p.AuthorID != userID {
		return ErrForbidden
	}
	p.Comments = slices.Delete(p.Comments, i, i+1)
	return nil
}

func (s *Store) SaveUpload(name, contentType string, data []byte) {
	s.mu.Lock()
	s.uploads[name] = uploadRecord{ContentType: contentType, Data: data}
	s.mu.Unlock()
}

func (s *Store) Upload(name string) (uploadRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[name]
	return u, ok
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "post"
	}
	return slug
}
