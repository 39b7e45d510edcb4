package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every failure returned by Client wraps exactly one of these,
// so callers can branch with errors.Is instead of inspecting status codes.
var (
	// ErrNetwork indicates the request never reached the backend or no
	// response came back (DNS, connection refused, timeout, cancellation).
	ErrNetwork = errors.New("network failure")

	// ErrAuthExpired indicates a 401. The session has already been cleared
	// by the unauthorized handler when the caller sees this error.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrForbidden indicates a 403: authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates any other 4xx; the server message explains it.
	ErrValidation = errors.New("request rejected")

	// ErrServer indicates a 5xx.
	ErrServer = errors.New("server error")

	// ErrDecode indicates a 2xx whose body could not be decoded.
	ErrDecode = errors.New("malformed response")
)

// Error describes a failed API call.
type Error struct {
	Kind       error
	Err        error // transport or decode cause, if any
	Method     string
	Path       string
	Message    string // server supplied message, if any
	StatusCode int
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// kindForStatus maps an HTTP status to an error kind. 2xx/3xx return nil.
func kindForStatus(status int) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized:
		return ErrAuthExpired
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}

// ServerMessage returns the backend's message for a failed call, or "".
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// MessageOr returns the server message when there is one and fallback otherwise.
func MessageOr(err error, fallback string) string {
	if msg := ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

// IsAuthError reports whether re-authenticating might help.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthExpired) || errors.Is(err, ErrForbidden)
}

// StatusCode returns the HTTP status of a failed call, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
