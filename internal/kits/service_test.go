package kits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emskit/emskit/internal/audit"
	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

type memoryRepo struct {
	kits   map[string]Kit
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{kits: make(map[string]Kit)}
}

func (r *memoryRepo) ListKits(ctx context.Context) ([]Kit, error) {
	out := make([]Kit, 0, len(r.kits))
	for _, kit := range r.kits {
		out = append(out, kit)
	}
	return out, nil
}

func (r *memoryRepo) GetKit(ctx context.Context, id string) (Kit, error) {
	kit, ok := r.kits[id]
	if !ok {
		return Kit{}, httpx.ErrNotFound
	}
	return kit, nil
}

func (r *memoryRepo) CreateKit(ctx context.Context, kit Kit) (Kit, error) {
	r.nextID++
	kit.ID = string(rune('a' + r.nextID))
	r.kits[kit.ID] = kit
	return kit, nil
}

func (r *memoryRepo) UpdateKit(ctx context.Context, id, name, vehicleID string) (Kit, error) {
	kit, ok := r.kits[id]
	if !ok {
		return Kit{}, httpx.ErrNotFound
	}
	kit.Name = name
	kit.VehicleID = vehicleID
	r.kits[id] = kit
	return kit, nil
}

func (r *memoryRepo) DeleteKit(ctx context.Context, id string) error {
	if _, ok := r.kits[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.kits, id)
	return nil
}

type stubAuthorizer struct {
	allow map[authz.Action]bool
}

func (s stubAuthorizer) Allowed(ctx context.Context, action authz.Action, entity authz.Entity, actor *authz.Actor) bool {
	if actor == nil {
		return false
	}
	return s.allow[action]
}

type recordingSink struct {
	entries []audit.Entry
}

func (r *recordingSink) Record(ctx context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func TestCreateKitDeniedActor(t *testing.T) {
	repo := newMemoryRepo()
	sink := &recordingSink{}
	svc := NewService(repo, stubAuthorizer{allow: map[authz.Action]bool{}}, sink)
	ctx := context.Background()

	_, err := svc.CreateKit(ctx, &authz.Actor{ID: "u1"}, CreateKitInput{Name: "ALS bag"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Empty(t, repo.kits, "denied create must not write")
	require.Empty(t, sink.entries, "denied create must not audit")

	_, err = svc.CreateKit(ctx, nil, CreateKitInput{Name: "ALS bag"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestCreateKitRecordsAudit(t *testing.T) {
	repo := newMemoryRepo()
	sink := &recordingSink{}
	svc := NewService(repo, stubAuthorizer{allow: map[authz.Action]bool{authz.ActionCreate: true}}, sink)
	ctx := context.Background()

	kit, err := svc.CreateKit(ctx, &authz.Actor{ID: "u1", RoleID: "r1"}, CreateKitInput{Name: "ALS bag"})
	require.NoError(t, err)
	require.NotEmpty(t, kit.ID)

	require.Len(t, sink.entries, 1)
	require.Equal(t, "u1", sink.entries[0].ActorID)
	require.Equal(t, "create", sink.entries[0].Action)
	require.Equal(t, "kit", sink.entries[0].Entity)
	require.Equal(t, kit.ID, sink.entries[0].EntityID)
}

func TestCreateKitValidatesName(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubAuthorizer{allow: map[authz.Action]bool{authz.ActionCreate: true}}, nil)
	_, err := svc.CreateKit(context.Background(), &authz.Actor{ID: "u1"}, CreateKitInput{Name: "   "})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateAndDeleteGates(t *testing.T) {
	repo := newMemoryRepo()
	sink := &recordingSink{}
	full := stubAuthorizer{allow: map[authz.Action]bool{
		authz.ActionCreate: true,
		authz.ActionUpdate: true,
		authz.ActionDelete: true,
	}}
	svc := NewService(repo, full, sink)
	ctx := context.Background()
	actor := &authz.Actor{ID: "u1"}

	kit, err := svc.CreateKit(ctx, actor, CreateKitInput{Name: "Trauma kit"})
	require.NoError(t, err)

	updated, err := svc.UpdateKit(ctx, actor, kit.ID, UpdateKitInput{Name: "Trauma kit A", VehicleID: "v1"})
	require.NoError(t, err)
	require.Equal(t, "Trauma kit A", updated.Name)

	require.NoError(t, svc.DeleteKit(ctx, actor, kit.ID))
	require.ErrorIs(t, svc.DeleteKit(ctx, actor, kit.ID), httpx.ErrNotFound)
	require.Len(t, sink.entries, 3)

	readOnly := NewService(repo, stubAuthorizer{allow: map[authz.Action]bool{authz.ActionRead: true}}, sink)
	_, err = readOnly.UpdateKit(ctx, actor, kit.ID, UpdateKitInput{Name: "X"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.ErrorIs(t, readOnly.DeleteKit(ctx, actor, kit.ID), httpx.ErrForbidden)
}

func TestListKitsRequiresRead(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubAuthorizer{allow: map[authz.Action]bool{authz.ActionRead: true}}, nil)
	ctx := context.Background()

	kits, err := svc.ListKits(ctx, &authz.Actor{ID: "u1"})
	require.NoError(t, err)
	require.Empty(t, kits)

	_, err = svc.ListKits(ctx, nil)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}
