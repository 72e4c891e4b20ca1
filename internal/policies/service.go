package policies

import (
	"context"
	"fmt"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// RepositoryPort defines data access methods for policies.
type RepositoryPort interface {
	ListByRole(ctx context.Context, roleID string) ([]authz.Policy, error)
	Upsert(ctx context.Context, policy authz.Policy) (authz.Policy, error)
	Delete(ctx context.Context, roleID string, entity authz.Entity) error
}

// RolePort checks that the target role exists before policies are written.
type RolePort interface {
	GetRole(ctx context.Context, id string) (authz.Role, error)
}

// InvalidatorPort broadcasts cache clears after policy writes.
type InvalidatorPort interface {
	ClearRole(ctx context.Context, roleID string)
}

// Service handles policy administration: the write path behind the
// read-only policy store the engine consults.
type Service struct {
	repo        RepositoryPort
	roles       RolePort
	invalidator InvalidatorPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roles RolePort, invalidator InvalidatorPort) *Service {
	return &Service{repo: repo, roles: roles, invalidator: invalidator}
}

// UpsertInput carries the flags for one (role, entity) pair.
type UpsertInput struct {
	RoleID    string
	Entity    authz.Entity
	CanCreate bool
	CanRead   bool
	CanUpdate bool
	CanDelete bool
}

// ListByRole returns all policies of a role.
func (s *Service) ListByRole(ctx context.Context, roleID string) ([]authz.Policy, error) {
	if _, err := s.roles.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repo.ListByRole(ctx, roleID)
}

// Upsert writes the policy for a (role, entity) pair and invalidates the
// role's cached policy list everywhere.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (authz.Policy, error) {
	if !input.Entity.Valid() {
		return authz.Policy{}, fmt.Errorf("policies: unknown entity %q: %w", input.Entity, httpx.ErrValidation)
	}
	if _, err := s.roles.GetRole(ctx, input.RoleID); err != nil {
		return authz.Policy{}, err
	}
	policy, err := s.repo.Upsert(ctx, authz.Policy{
		RoleID:    input.RoleID,
		Entity:    input.Entity,
		CanCreate: input.CanCreate,
		CanRead:   input.CanRead,
		CanUpdate: input.CanUpdate,
		CanDelete: input.CanDelete,
	})
	if err != nil {
		return authz.Policy{}, err
	}
	if s.invalidator != nil {
		s.invalidator.ClearRole(ctx, input.RoleID)
	}
	return policy, nil
}

// Delete removes the policy for a (role, entity) pair. The affected role's
// checks fall back to denial until a new policy is written.
func (s *Service) Delete(ctx context.Context, roleID string, entity authz.Entity) error {
	if !entity.Valid() {
		return fmt.Errorf("policies: unknown entity %q: %w", entity, httpx.ErrValidation)
	}
	if err := s.repo.Delete(ctx, roleID, entity); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.ClearRole(ctx, roleID)
	}
	return nil
}
