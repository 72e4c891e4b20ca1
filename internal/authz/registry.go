package authz

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("authz: not found")

// RoleSource is the backing-store view the registry needs: list everything,
// fetch by ID, fetch by field equality on kind. Implementations signal a
// missing record with ErrNotFound; any other error is treated as a transport
// failure.
type RoleSource interface {
	ListRoles(ctx context.Context) ([]Role, error)
	FindRole(ctx context.Context, id string) (Role, error)
	FindRoleByKind(ctx context.Context, kind RoleKind) (Role, error)
}

// RoleRegistry resolves role records through the cache. Transport failures
// are swallowed into empty results: the engine above fails closed, so a
// backend outage reads the same as an unconfigured role.
type RoleRegistry struct {
	source RoleSource
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewRoleRegistry builds a registry over the given source and cache.
func NewRoleRegistry(source RoleSource, cache *Cache, logger *slog.Logger) *RoleRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleRegistry{source: source, cache: cache, logger: logger}
}

// GetAllRoles returns every role record in store order. On failure it
// returns an empty slice, never an error.
func (r *RoleRegistry) GetAllRoles(ctx context.Context) []Role {
	roles, err := r.source.ListRoles(ctx)
	if err != nil {
		r.logger.Warn("list roles", slog.Any("error", err))
		return nil
	}
	return roles
}

// GetRole resolves a role by ID, cache first. Returns nil for an empty ID,
// an unmatched ID, or a store failure.
func (r *RoleRegistry) GetRole(ctx context.Context, id string) *Role {
	if id == "" {
		return nil
	}
	if role, ok := r.cache.Role(id); ok {
		return &role
	}
	v, err, _ := r.group.Do("role:"+id, func() (any, error) {
		gen := r.cache.Generation()
		role, err := r.source.FindRole(ctx, id)
		if err != nil {
			return nil, err
		}
		r.cache.StoreRole(gen, role)
		return role, nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("find role", slog.String("role_id", id), slog.Any("error", err))
		}
		return nil
	}
	role := v.(Role)
	return &role
}

// GetRoleByKind resolves the first role record of the given kind. The store
// permits at most one per kind, but resolution is first-match either way.
func (r *RoleRegistry) GetRoleByKind(ctx context.Context, kind RoleKind) *Role {
	role, err := r.source.FindRoleByKind(ctx, kind)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("find role by kind", slog.String("kind", string(kind)), slog.Any("error", err))
		}
		return nil
	}
	return &role
}
