package roles

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]authz.Role, error)
	GetRole(ctx context.Context, id string) (authz.Role, error)
	CreateRole(ctx context.Context, kind authz.RoleKind, displayName string) (authz.Role, error)
	UpdateRole(ctx context.Context, id, displayName string) (authz.Role, error)
	DeleteRole(ctx context.Context, id string) error
}

// InvalidatorPort broadcasts cache clears after role writes.
type InvalidatorPort interface {
	ClearRole(ctx context.Context, roleID string)
}

// Service handles role administration. Reads for permission checks go
// through the authz registry, not here; this is the write path that feeds
// it.
type Service struct {
	repo        RepositoryPort
	invalidator InvalidatorPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator InvalidatorPort) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// CreateRoleInput carries the fields for a new role.
type CreateRoleInput struct {
	Kind        authz.RoleKind
	DisplayName string
}

var displayTitle = cases.Title(language.English)

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]authz.Role, error) {
	return s.repo.ListRoles(ctx)
}

// Get returns one role by ID.
func (s *Service) Get(ctx context.Context, id string) (authz.Role, error) {
	return s.repo.GetRole(ctx, id)
}

// Create inserts a new role. Display name defaults to the title-cased kind.
func (s *Service) Create(ctx context.Context, input CreateRoleInput) (authz.Role, error) {
	if !input.Kind.Valid() {
		return authz.Role{}, fmt.Errorf("roles: unknown kind %q: %w", input.Kind, httpx.ErrValidation)
	}
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		name = displayTitle.String(string(input.Kind))
	}
	return s.repo.CreateRole(ctx, input.Kind, name)
}

// Update changes the display name. Kind never changes after creation.
func (s *Service) Update(ctx context.Context, id, displayName string) (authz.Role, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return authz.Role{}, fmt.Errorf("roles: display name required: %w", httpx.ErrValidation)
	}
	role, err := s.repo.UpdateRole(ctx, id, name)
	if err != nil {
		return authz.Role{}, err
	}
	if s.invalidator != nil {
		s.invalidator.ClearRole(ctx, id)
	}
	return role, nil
}

// Delete removes a role and drops its cached entries everywhere.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.ClearRole(ctx, id)
	}
	return nil
}
