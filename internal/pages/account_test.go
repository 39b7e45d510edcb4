package pages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/core/auth"
	"Inkwell/internal/core/users"
)

func TestLoginPage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuth{login: func(_ context.Context, email, password string) (*auth.Response, error) {
			assert.Equal(t, "ada@example.com", email)
			assert.Equal(t, "secret", password)
			return &auth.Response{Token: "tok"}, nil
		}}
		nav := &recordingNav{}
		page := NewLoginPage(svc, nav)

		require.NoError(t, page.Submit(context.Background(), "ada@example.com", "secret"))
		assert.Equal(t, AccountState{Message: MsgLoginSuccess}, page.State())
		assert.Equal(t, RouteHome, nav.last())
	})

	t.Run("rejected", func(t *testing.T) {
		svc := &fakeAuth{login: func(context.Context, string, string) (*auth.Response, error) {
			return nil, &apiclient.Error{Kind: apiclient.ErrValidation, StatusCode: 400, Message: "Invalid credentials"}
		}}
		nav := &recordingNav{}
		page := NewLoginPage(svc, nav)

		require.Error(t, page.Submit(context.Background(), "ada@example.com", "wrong"))
		assert.Equal(t, AccountState{Error: "Invalid credentials"}, page.State())
		assert.Empty(t, nav.routes)
	})

	t.Run("no message", func(t *testing.T) {
		svc := &fakeAuth{login: func(context.Context, string, string) (*auth.Response, error) {
			return nil, auth.ErrNoToken
		}}
		page := NewLoginPage(svc, nil)

		require.Error(t, page.Submit(context.Background(), "ada@example.com", "pw"))
		assert.Equal(t, MsgLoginFailed, page.State().Error)
	})
}

func TestRegisterPage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuth{register: func(_ context.Context, name, _, _ string) (*auth.Response, error) {
			assert.Equal(t, "Ada", name)
			return &auth.Response{Message: "User registered successfully"}, nil
		}}
		nav := &recordingNav{}
		page := NewRegisterPage(svc, nav)

		require.NoError(t, page.Submit(context.Background(), "Ada", "ada@example.com", "secret"))
		assert.Equal(t, MsgRegisterSuccess, page.State().Message)
		assert.Equal(t, RouteLogin, nav.last())
	})

	t.Run("local validation", func(t *testing.T) {
		svc := &fakeAuth{register: func(context.Context, string, string, string) (*auth.Response, error) {
			return nil, &users.MissingFieldError{Field: "name"}
		}}
		page := NewRegisterPage(svc, nil)

		require.Error(t, page.Submit(context.Background(), "", "ada@example.com", "secret"))
		assert.Equal(t, "name is required", page.State().Error)
	})

	t.Run("server rejection", func(t *testing.T) {
		svc := &fakeAuth{register: func(context.Context, string, string, string) (*auth.Response, error) {
			return nil, &apiclient.Error{Kind: apiclient.ErrValidation, StatusCode: 400, Message: "User already exists"}
		}}
		page := NewRegisterPage(svc, nil)

		require.Error(t, page.Submit(context.Background(), "Ada", "ada@example.com", "secret"))
		assert.Equal(t, "User already exists", page.State().Error)
	})
}
