// server/internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/repository"
)

const invalidCredentials = "Invalid username or password"

type AuthService struct {
	users repository.UserRepository
	codec *auth.SessionCodec
	log   zerolog.Logger
}

func NewAuthService(users repository.UserRepository, codec *auth.SessionCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		codec: codec,
		log:   log.With().Str("component", "auth").Logger(),
	}
}

// LoginResult carries what the handler needs to set the cookie.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   auth.Session
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fail(ErrInvalidInput, "Username and password are required")
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrUnauthorized, invalidCredentials)
		}
		return nil, internal(s.log, "login", err)
	}
	if !auth.CheckPasswordHash(password, u.Password) {
		s.log.Warn().Str("username", username).Msg("failed login")
		return nil, fail(ErrUnauthorized, invalidCredentials)
	}

	session := auth.Session{Name: u.FullName(), Username: u.Username, Role: u.Role}
	token, exp, err := s.codec.Issue(session)
	if err != nil {
		return nil, internal(s.log, "issue session", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Session: session}, nil
}

// Identity decrypts a cookie value. Failures mean no user and are never returned.
func (s *AuthService) Identity(token string) *auth.Session {
	if token == "" {
		return nil
	}
	session, err := s.codec.Open(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("session rejected")
		return nil
	}
	return session
}

// SessionTTL is the cookie lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.codec.TTL()
}
