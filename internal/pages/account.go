package pages

import (
	"context"
	"sync"
)

// AccountState is a snapshot of the login or register form.
type AccountState struct {
	Error   string
	Message string
}

// LoginPage signs a user in and sends them home.
type LoginPage struct {
	auth AuthService
	nav  Navigator

	mu    sync.Mutex
	state AccountState
	gate  submitGate
}

// NewLoginPage creates the login view.
func NewLoginPage(svc AuthService, nav Navigator) *LoginPage {
	if nav == nil {
		nav = noopNavigator{}
	}
	return &LoginPage{auth: svc, nav: nav}
}

func (p *LoginPage) State() AccountState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *LoginPage) Submitting() bool { return p.gate.Submitting() }

// Submit logs in. The session is persisted by the auth service.
func (p *LoginPage) Submit(ctx context.Context, email, password string) error {
	if !p.gate.begin() {
		return ErrSubmitInProgress
	}
	defer p.gate.end()

	_, err := p.auth.Login(ctx, email, password)

	p.mu.Lock()
	if err != nil {
		p.state = AccountState{Error: messageFor(err, MsgLoginFailed)}
		p.mu.Unlock()
		return err
	}
	p.state = AccountState{Message: MsgLoginSuccess}
	p.mu.Unlock()

	p.nav.Navigate(RouteHome)
	return nil
}

// RegisterPage creates an account and sends the user to log in.
type RegisterPage struct {
	auth AuthService
	nav  Navigator

	mu    sync.Mutex
	state AccountState
	gate  submitGate
}

// NewRegisterPage creates the register view.
func NewRegisterPage(svc AuthService, nav Navigator) *RegisterPage {
	if nav == nil {
		nav = noopNavigator{}
	}
	return &RegisterPage{auth: svc, nav: nav}
}

func (p *RegisterPage) State() AccountState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *RegisterPage) Submitting() bool { return p.gate.Submitting() }

// Submit registers an account. It does not log in.
func (p *RegisterPage) Submit(ctx context.Context, name, email, password string) error {
	if !p.gate.begin() {
		return ErrSubmitInProgress
	}
	defer p.gate.end()

	_, err := p.auth.Register(ctx, name, email, password)

	p.mu.Lock()
	if err != nil {
		p.state = AccountState{Error: messageFor(err, MsgRegisterFailed)}
		p.mu.Unlock()
		return err
	}
	p.state = AccountState{Message: MsgRegisterSuccess}
	p.mu.Unlock()

	p.nav.Navigate(RouteLogin)
	return nil
}
