package social

import (
	"context"
	"fmt"
	"sync"
)

// AuthState is a step of the login lifecycle
type AuthState int

const (
	NotAuthenticated AuthState = iota
	Authenticating
	Authenticated
	LoginFailed
)

func (s AuthState) String() string {
	switch s {
	case NotAuthenticated:
		return "not_authenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case LoginFailed:
		return "login_failed"
	default:
		return fmt.Sprintf("auth_state(%d)", int(s))
	}
}

// transitions lists the allowed next states; a failed login may be retried
var transitions = map[AuthState][]AuthState{
	NotAuthenticated: {Authenticating},
	Authenticating:   {Authenticated, LoginFailed},
	LoginFailed:      {Authenticating},
}

// AuthMachine tracks login state. Callers only see the Authenticated gate.
type AuthMachine struct {
	mu    sync.Mutex
	state AuthState
}

// NewAuthMachine starts in NotAuthenticated
func NewAuthMachine() *AuthMachine {
	return &AuthMachine{state: NotAuthenticated}
}

func (m *AuthMachine) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Authenticated reports whether a login has succeeded
func (m *AuthMachine) Authenticated() bool {
	return m.State() == Authenticated
}

func (m *AuthMachine) transition(to AuthState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, allowed := range transitions[m.state] {
		if allowed == to {
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid auth transition %s -> %s", m.state, to)
}

// Login drives the machine through one sign-in attempt on s
func (m *AuthMachine) Login(ctx context.Context, s Session, username, password string) error {
	if err := m.transition(Authenticating); err != nil {
		return err
	}

	if err := s.Login(ctx, username, password); err != nil {
		if tErr := m.transition(LoginFailed); tErr != nil {
			return tErr
		}
		return fmt.Errorf("login: %w", err)
	}

	return m.transition(Authenticated)
}
