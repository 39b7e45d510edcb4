package session

import (
	"context"
	"log/slog"
)

// Invalidator is the global reaction to an expired credential: it clears
// the stored session and sends the user to the login view. It is installed
// as the HTTP client's unauthorized handler and runs before the failing
// call's own error handling.
type Invalidator struct {
	store    *Store
	redirect func()
	logger   *slog.Logger
}

// NewInvalidator creates the handler. redirect may be nil when there is no
// view to navigate (background tools).
func NewInvalidator(store *Store, redirect func(), logger *slog.Logger) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator{store: store, redirect: redirect, logger: logger}
}

// HandleUnauthorized clears the session and triggers the login redirect.
func (i *Invalidator) HandleUnauthorized(_ context.Context) {
	if err := i.store.Clear(); err != nil {
		i.logger.Error("failed to clear session after 401", "error", err)
	} else {
		i.logger.Info("session cleared after 401 response")
	}
	if i.redirect != nil {
		i.redirect()
	}
}
