package categories

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category is a flat label a post is filed under.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type categoryJSON struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

// UnmarshalJSON accepts both "_id" and "id" keyed documents.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw categoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	if c.ID == "" {
		c.ID = raw.MongoID
	}
	c.Name = raw.Name
	return nil
}

// Ref is a post's category: a bare id, or an embedded {id, name} when the
// backend populated it.
type Ref struct {
	ID   string
	Name string
}

// UnmarshalJSON decodes a bare id string, an embedded category, or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var c Category
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decode category reference: %w", err)
	}
	*r = Ref{ID: c.ID, Name: c.Name}
	return nil
}

// MarshalJSON writes the embedded form when the name is known and the bare id otherwise.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch {
	case r.ID == "" && r.Name == "":
		return []byte("null"), nil
	case r.Name == "":
		return json.Marshal(r.ID)
	default:
		return json.Marshal(Category{ID: r.ID, Name: r.Name})
	}
}

// Resolve fills in a missing name from a loaded category list.
func (r Ref) Resolve(all []Category) Ref {
	if r.Name != "" || r.ID == "" {
		return r
	}
	for _, c := range all {
		if c.ID == r.ID {
			return Ref{ID: c.ID, Name: c.Name}
		}
	}
	return r
}

// listResponse accepts either a bare array or {"categories": [...]}.
type listResponse []Category

func (l *listResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Categories []Category `json:"categories"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		*l = wrapped.Categories
		return nil
	}
	var list []Category
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// createResponse accepts the created category itself or {"category": {...}}.
type createResponse struct {
	Category
}

func (c *createResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Category *Category `json:"category"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Category != nil {
		c.Category = *wrapped.Category
		return nil
	}
	return json.Unmarshal(data, &c.Category)
}
