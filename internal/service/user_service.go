// server/internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/repository"
)

const minPasswordLength = 6

type CreateUserInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UpdateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UserService struct {
	repo  repository.UserRepository
	clock Clock
	log   zerolog.Logger
}

func NewUserService(repo repository.UserRepository, clock Clock, log zerolog.Logger) *UserService {
	return &UserService{
		repo:  repo,
		clock: clock,
		log:   log.With().Str("component", "users").Logger(),
	}
}

// Create registers an account. The role is never taken from the caller:
// the first account is ADMIN, every later one STAFF.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	switch {
	case in.Username == "":
		return nil, fail(ErrInvalidInput, "Username is required")
	case strings.ContainsAny(in.Username, " \t"):
		return nil, fail(ErrInvalidInput, "Username cannot contain spaces")
	case len(in.Password) < minPasswordLength:
		return nil, fail(ErrInvalidInput, "Password must be at least %d characters", minPasswordLength)
	case in.FirstName == "":
		return nil, fail(ErrInvalidInput, "First name is required")
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, fail(ErrDuplicate, "Username %s is already taken", in.Username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal(s.log, "check username", err)
	}

	existing, err := s.repo.Count(ctx)
	if err != nil {
		return nil, internal(s.log, "count users", err)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, internal(s.log, "hash password", err)
	}

	now := s.clock()
	u := &models.User{
		Username:  in.Username,
		Password:  hash,
		Role:      auth.RoleForNewUser(existing),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fail(ErrDuplicate, "Username %s is already taken", in.Username)
		}
		return nil, internal(s.log, "create user", err)
	}
	s.log.Info().Str("username", u.Username).Str("role", u.Role).Msg("user created")
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal(s.log, "list users", err)
	}
	return users, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internal(s.log, "count users", err)
	}
	return n, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, s.lookupError("get user", err)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.FirstName == "" {
		return fail(ErrInvalidInput, "First name is required")
	}
	if err := s.repo.UpdateProfile(ctx, oid, in.FirstName, strings.TrimSpace(in.LastName), s.clock()); err != nil {
		return s.lookupError("update user", err)
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, password string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return fail(ErrInvalidInput, "Password must be at least %d characters", minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return internal(s.log, "hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, oid, hash, s.clock()); err != nil {
		return s.lookupError("change password", err)
	}
	return nil
}

// Delete removes a STAFF account. ADMIN accounts are refused and left untouched.
func (s *UserService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	u, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return s.lookupError("delete user", err)
	}
	if !auth.CanDelete(*u) {
		return fail(ErrForbidden, "Admin accounts cannot be deleted")
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return s.lookupError("delete user", err)
	}
	s.log.Info().Str("username", u.Username).Msg("user deleted")
	return nil
}

func (s *UserService) lookupError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "User not found")
	}
	return internal(s.log, op, err)
}
