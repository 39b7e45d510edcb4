package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when the backend has no post with the given id or slug
	ErrNotFound = errors.New("post not found")

	// ErrContentEmpty is returned when a comment is blank after trimming
	ErrContentEmpty = errors.New("comment cannot be empty")

	// ErrContentTooLong is returned when a comment exceeds MaxCommentGraphemes
	ErrContentTooLong = errors.New("comment is too long")

	// ErrInvalidPage is returned when page or limit is not a positive integer
	ErrInvalidPage = errors.New("page and limit must be positive")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
