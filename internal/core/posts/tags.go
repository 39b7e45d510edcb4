package posts

import (
	"slices"
	"strings"
)

// TagSet is an insertion ordered, case-sensitive set of tags built up one
// entry at a time. The zero value is ready to use.
type TagSet struct {
	tags []string
}

// NewTagSet seeds a set, dropping blanks and duplicates.
func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add trims tag and appends it unless it is empty or already present.
// It reports whether the set changed.
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(s.tags, tag) {
		return false
	}
	s.tags = append(s.tags, tag)
	return true
}

// Remove drops tag and reports whether it was present.
func (s *TagSet) Remove(tag string) bool {
	i := slices.Index(s.tags, tag)
	if i < 0 {
		return false
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	return true
}

// Tags returns a copy in insertion order.
func (s *TagSet) Tags() []string {
	return slices.Clone(s.tags)
}

// Len returns the number of tags.
func (s *TagSet) Len() int {
	return len(s.tags)
}

// String returns the comma joined wire form.
func (s *TagSet) String() string {
	return JoinTags(s.tags, ",")
}

// ParseTags splits free text on commas, trims each piece and drops empty
// ones. Order and duplicates are preserved.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// JoinTags joins tags with sep.
func JoinTags(tags []string, sep string) string {
	return strings.Join(tags, sep)
}
