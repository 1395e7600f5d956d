package auth

import (
	"errors"
	"sync"

	"agencypulse/server/internal/models"
)

// SessionState names one phase of the login lifecycle.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
	StateFailed         SessionState = "failed"
)

var ErrLoginInProgress = errors.New("a login attempt is already in progress")

// Session is an explicit state machine over the login lifecycle. Concurrent
// login attempts are rejected rather than racing, and a failure holds its
// error until the next attempt begins.
type Session struct {
	mu      sync.RWMutex
	state   SessionState
	profile *models.Profile
	err     error
}

func NewSession() *Session {
	return &Session{state: StateAnonymous}
}

// Begin moves into authenticating. Only anonymous and failed sessions can
// start an attempt; an authenticated session must Clear first.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAuthenticating:
		return ErrLoginInProgress
	case StateAuthenticated:
		return errors.New("already authenticated")
	}

	s.state = StateAuthenticating
	s.profile = nil
	s.err = nil
	return nil
}

// Succeed records a completed login.
func (s *Session) Succeed(profile *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.profile = profile
	s.err = nil
}

// Fail records a failed attempt along with its cause.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.profile = nil
	s.err = err
}

// Clear logs the session out, from any state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.profile = nil
	s.err = nil
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Profile returns the logged-in profile, or nil outside authenticated.
func (s *Session) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return nil
	}
	return s.profile
}

// Err returns the failure cause while in the failed state.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateFailed {
		return nil
	}
	return s.err
}

// Sessions tracks one Session per account email. The registry is injected
// into the auth service, which drives each machine through its login
// lifecycle.
type Sessions struct {
	mu      sync.Mutex
	byEmail map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byEmail: make(map[string]*Session)}
}

// For returns the session for an email, creating an anonymous one on first
// use. Emails are compared case-insensitively by the caller's normalization.
func (s *Sessions) For(email string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byEmail[email]
	if !ok {
		session = NewSession()
		s.byEmail[email] = session
	}
	return session
}
