package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

type memoryRepo struct {
	policies map[string]map[authz.Entity]authz.Policy
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{policies: make(map[string]map[authz.Entity]authz.Policy)}
}

func (r *memoryRepo) ListByRole(ctx context.Context, roleID string) ([]authz.Policy, error) {
	var out []authz.Policy
	for _, policy := range r.policies[roleID] {
		out = append(out, policy)
	}
	return out, nil
}

func (r *memoryRepo) Upsert(ctx context.Context, policy authz.Policy) (authz.Policy, error) {
	byEntity, ok := r.policies[policy.RoleID]
	if !ok {
		byEntity = make(map[authz.Entity]authz.Policy)
		r.policies[policy.RoleID] = byEntity
	}
	if existing, ok := byEntity[policy.Entity]; ok {
		policy.ID = existing.ID
	} else if policy.ID == "" {
		policy.ID = "p-" + policy.RoleID + "-" + string(policy.Entity)
	}
	byEntity[policy.Entity] = policy
	return policy, nil
}

func (r *memoryRepo) Delete(ctx context.Context, roleID string, entity authz.Entity) error {
	byEntity := r.policies[roleID]
	if _, ok := byEntity[entity]; !ok {
		return httpx.ErrNotFound
	}
	delete(byEntity, entity)
	return nil
}

type staticRoles struct {
	known map[string]authz.Role
}

func (s staticRoles) GetRole(ctx context.Context, id string) (authz.Role, error) {
	role, ok := s.known[id]
	if !ok {
		return authz.Role{}, httpx.ErrNotFound
	}
	return role, nil
}

type recordingInvalidator struct {
	cleared []string
}

func (i *recordingInvalidator) ClearRole(ctx context.Context, roleID string) {
	i.cleared = append(i.cleared, roleID)
}

func newTestService() (*Service, *memoryRepo, *recordingInvalidator) {
	repo := newMemoryRepo()
	inv := &recordingInvalidator{}
	roles := staticRoles{known: map[string]authz.Role{
		"r1": {ID: "r1", Kind: authz.RoleLogistics},
	}}
	return NewService(repo, roles, inv), repo, inv
}

func TestUpsertValidatesEntity(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Upsert(context.Background(), UpsertInput{RoleID: "r1", Entity: "warehouse"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpsertRequiresKnownRole(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Upsert(context.Background(), UpsertInput{RoleID: "ghost", Entity: authz.EntityKit})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpsertReplacesFlagsAndInvalidates(t *testing.T) {
	svc, repo, inv := newTestService()
	ctx := context.Background()

	first, err := svc.Upsert(ctx, UpsertInput{RoleID: "r1", Entity: authz.EntityKit, CanRead: true})
	require.NoError(t, err)
	require.True(t, first.CanRead)
	require.False(t, first.CanCreate)

	second, err := svc.Upsert(ctx, UpsertInput{RoleID: "r1", Entity: authz.EntityKit, CanCreate: true, CanRead: true})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same pair keeps one record")
	require.True(t, second.CanCreate)

	stored, err := repo.ListByRole(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	require.Equal(t, []string{"r1", "r1"}, inv.cleared)
}

func TestDeleteInvalidates(t *testing.T) {
	svc, _, inv := newTestService()
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertInput{RoleID: "r1", Entity: authz.EntityKit, CanRead: true})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "r1", authz.EntityKit))
	require.Len(t, inv.cleared, 2)

	require.ErrorIs(t, svc.Delete(ctx, "r1", authz.EntityKit), httpx.ErrNotFound)
}
