package users

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// User is the identity returned by the backend on login and embedded in
// posts and comments. The backend keys documents by "_id"; "id" is accepted
// too so either serialization round-trips.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type userJSON struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// UnmarshalJSON accepts both "_id" and "id" keyed documents.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw userJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = firstNonEmpty(raw.ID, raw.MongoID)
	u.Name = raw.Name
	u.Email = raw.Email
	return nil
}

// Ref is a reference to a user as it appears inside other documents.
// Depending on whether the backend populated the relation it is either a
// bare id string or an embedded user object.
type Ref struct {
	ID   string
	Name string
}

// UnmarshalJSON decodes a bare id string, an embedded user, or null.
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

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("decode user reference: %w", err)
	}
	*r = Ref{ID: u.ID, Name: u.Name}
	return nil
}

// MarshalJSON writes the embedded form so a cached copy keeps the author name.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" && r.Name == "" {
		return []byte("null"), nil
	}
	return json.Marshal(User{ID: r.ID, Name: r.Name})
}

// DisplayName falls back to a placeholder for unpopulated references.
func (r Ref) DisplayName() string {
	if r.Name == "" {
		return "Unknown User"
	}
	return r.Name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
