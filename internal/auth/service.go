// Package auth owns accounts, access tokens and the session lifecycle.
package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"agencypulse/server/config"
	"agencypulse/server/internal/models"
)

var (
	// ErrInvalidCredentials is deliberately the same for a missing account
	// and a wrong password so login failures do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
)

// ProfileStore is the slice of storage the auth service needs.
type ProfileStore interface {
	GetProfileByEmail(email string) (*models.Profile, error)
	GetProfileByID(id int64) (*models.Profile, error)
	InsertProfile(p *models.Profile) (int64, error)
}

// Service verifies credentials and issues access tokens. Each account's login
// lifecycle runs through its Session state machine in the injected registry.
type Service struct {
	store    ProfileStore
	sessions *Sessions
	secret   []byte
	ttl      time.Duration
	logger   *logrus.Logger
}

func NewService(store ProfileStore, sessions *Sessions, cfg *config.Config, logger *logrus.Logger) *Service {
	if sessions == nil {
		sessions = NewSessions()
	}
	return &Service{
		store:    store,
		sessions: sessions,
		secret:   []byte(cfg.JWTSecret),
		ttl:      time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		logger:   logger,
	}
}

// Login verifies the credentials and returns the profile with a signed token.
// The account's session moves anonymous -> authenticating -> authenticated,
// or to failed with the cause; a concurrent attempt for the same account is
// rejected with ErrLoginInProgress.
func (s *Service) Login(email, password string) (*models.Profile, string, error) {
	email = strings.TrimSpace(email)
	session := s.sessions.For(strings.ToLower(email))

	// Logging in again from a new client supersedes the old session.
	if session.State() == StateAuthenticated {
		session.Clear()
	}
	if err := session.Begin(); err != nil {
		return nil, "", err
	}

	profile, err := s.store.GetProfileByEmail(email)
	if err != nil {
		session.Fail(err)
		return nil, "", err
	}
	if profile == nil || !CheckPasswordHash(password, profile.PasswordHash) {
		session.Fail(ErrInvalidCredentials)
		return nil, "", ErrInvalidCredentials
	}

	token, err := IssueToken(profile, s.secret, s.ttl)
	if err != nil {
		session.Fail(err)
		return nil, "", err
	}

	session.Succeed(profile)
	s.logger.WithFields(logrus.Fields{
		"email": profile.Email,
		"role":  profile.Role,
	}).Info("User logged in")
	return profile, token, nil
}

// EndSession returns an account's session to anonymous on sign-out.
func (s *Service) EndSession(email string) {
	s.sessions.For(strings.ToLower(strings.TrimSpace(email))).Clear()
}

// SessionFor exposes an account's session state machine.
func (s *Service) SessionFor(email string) *Session {
	return s.sessions.For(strings.ToLower(strings.TrimSpace(email)))
}

// Register creates an agent account and returns it logged in, with the new
// account's session moved to authenticated.
func (s *Service) Register(email, password, agencyName string) (*models.Profile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	session := s.sessions.For(email)
	if err := session.Begin(); err != nil {
		return nil, "", err
	}

	existing, err := s.store.GetProfileByEmail(email)
	if err != nil {
		session.Fail(err)
		return nil, "", err
	}
	if existing != nil {
		session.Fail(ErrEmailTaken)
		return nil, "", ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		session.Fail(err)
		return nil, "", err
	}

	profile := &models.Profile{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAgent,
		AgencyName:   agencyName,
	}
	id, err := s.store.InsertProfile(profile)
	if err != nil {
		session.Fail(err)
		return nil, "", err
	}
	profile.ID = id

	token, err := IssueToken(profile, s.secret, s.ttl)
	if err != nil {
		session.Fail(err)
		return nil, "", err
	}

	session.Succeed(profile)
	s.logger.WithField("email", email).Info("Registered new agent account")
	return profile, token, nil
}

// RequestReset acknowledges a password reset request. The response is the
// same whether or not the account exists.
func (s *Service) RequestReset(email string) {
	s.logger.WithField("email", strings.TrimSpace(strings.ToLower(email))).
		Info("Password reset requested")
}

// Authenticate resolves a bearer token to its stored profile.
func (s *Service) Authenticate(tokenString string) (*models.Profile, error) {
	claims, err := ParseToken(tokenString, s.secret)
	if err != nil {
		return nil, err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	profileID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, errors.New("invalid token subject")
	}

	profile, err := s.store.GetProfileByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("account no longer exists")
	}
	return profile, nil
}
