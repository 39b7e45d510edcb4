package pages

import (
	"errors"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/core/posts"
	"Inkwell/internal/core/users"
)

var (
	// ErrSubmitInProgress is returned when a control is submitted again
	// before the previous submission finished.
	ErrSubmitInProgress = errors.New("submission already in progress")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled by user")

	// ErrNotLoaded is returned by actions that need a loaded post.
	ErrNotLoaded = errors.New("no post loaded")

	// ErrNotPermitted is returned when the viewer may not delete a comment.
	ErrNotPermitted = errors.New("not permitted")

	// ErrUploadsDisabled is returned by SetImage when no image loader is configured.
	ErrUploadsDisabled = errors.New("image uploads are not configured")
)

// User facing messages.
const (
	MsgLoginToDelete      = "You must be logged in to delete posts."
	MsgLoginToLike        = "You must be logged in to like posts"
	MsgLoginToComment     = "You must be logged in to comment"
	MsgCommentEmpty       = "Comment cannot be empty"
	MsgCommentTooLong     = "Comment is too long"
	MsgConfirmDeletePost  = "Are you sure you want to delete this post?"
	MsgConfirmDeleteReply = "Are you sure you want to delete this comment?"
	MsgFetchPostsFailed   = "Failed to fetch posts"
	MsgDeletePostFailed   = "Failed to delete post"
	MsgLoadPostFailed     = "Failed to load post"
	MsgLikeFailed         = "Could not update like"
	MsgAddCommentFailed   = "Could not add comment"
	MsgDeleteReplyFailed  = "Could not delete comment"
	MsgCannotDeleteReply  = "You can only delete your own comments or comments on your posts"
	MsgPostCreated        = "Post created!"
	MsgCreateFailed       = "Failed to create post"
	MsgUpdateFailed       = "Update failed"
	MsgLoadCategories     = "Failed to load categories"
	MsgLoginSuccess       = "Login successful! Redirecting..."
	MsgLoginFailed        = "Login failed"
	MsgRegisterSuccess    = "Registration successful! Redirecting..."
	MsgRegisterFailed     = "Registration failed"
)

// messageFor turns an error into something a view can show: the server's
// message when there is one, the text of a local validation error, or
// fallback.
func messageFor(err error, fallback string) string {
	if msg := apiclient.ServerMessage(err); msg != "" {
		return msg
	}

	var (
		missing *users.MissingFieldError
		invalid *users.InvalidEmailError
		valErr  *posts.ValidationError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid):
		return err.Error()
	case errors.As(err, &valErr):
		return valErr.Field + " " + valErr.Message
	case errors.Is(err, apiclient.ErrNetwork):
		return fallback + ": backend unreachable"
	}
	return fallback
}
