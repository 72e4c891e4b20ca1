package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, id, name, roleID string, active bool) (User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service handles user administration.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	RoleID   string
	Active   bool
}

// UpdateUserInput carries mutable account fields.
type UpdateUserInput struct {
	Name   string
	RoleID string
	Active bool
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser hashes the password and inserts the account.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return User{}, fmt.Errorf("users: email required: %w", httpx.ErrValidation)
	}
	if len(input.Password) < 8 {
		return User{}, fmt.Errorf("users: password too short: %w", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
		RoleID:       input.RoleID,
		Active:       input.Active,
	})
}

// UpdateUser changes name, role assignment and active flag.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return User{}, fmt.Errorf("users: name required: %w", httpx.ErrValidation)
	}
	return s.repo.UpdateUser(ctx, id, name, input.RoleID, input.Active)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// Actor returns the authorization view of a user. The engine does not check
// Active; it is carried so callers closer to sign-in can.
func (s *Service) Actor(ctx context.Context, id string) (*authz.Actor, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &authz.Actor{ID: user.ID, RoleID: user.RoleID, Active: user.Active}, nil
}
