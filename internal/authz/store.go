package authz

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// PolicySource is the backing-store view the policy store needs. An
// unmatched role ID yields an empty slice, not an error.
type PolicySource interface {
	ListPolicies(ctx context.Context, roleID string) ([]Policy, error)
}

// PolicyStore resolves the policy set of a role through the cache. Like the
// registry, transport failures surface as empty results so the engine fails
// closed.
type PolicyStore struct {
	source PolicySource
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewPolicyStore builds a policy store over the given source and cache.
func NewPolicyStore(source PolicySource, cache *Cache, logger *slog.Logger) *PolicyStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyStore{source: source, cache: cache, logger: logger}
}

// GetPolicies returns the full policy list of a role, cache first. Empty
// results are cached the same as populated ones, so a role with no policies
// costs one store round-trip per process lifetime, not one per check.
func (s *PolicyStore) GetPolicies(ctx context.Context, roleID string) []Policy {
	if roleID == "" {
		return nil
	}
	if policies, ok := s.cache.Policies(roleID); ok {
		return policies
	}
	v, err, _ := s.group.Do("policies:"+roleID, func() (any, error) {
		gen := s.cache.Generation()
		policies, err := s.source.ListPolicies(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if policies == nil {
			policies = []Policy{}
		}
		s.cache.StorePolicies(gen, roleID, policies)
		return policies, nil
	})
	if err != nil {
		s.logger.Warn("list policies", slog.String("role_id", roleID), slog.Any("error", err))
		return nil
	}
	return v.([]Policy)
}

// GetPolicy returns the first policy matching both keys, or nil. Callers
// must not rely on tie-break order beyond determinism for a fixed store
// ordering.
func (s *PolicyStore) GetPolicy(ctx context.Context, roleID string, entity Entity) *Policy {
	for _, policy := range s.GetPolicies(ctx, roleID) {
		if policy.Entity == entity {
			return &policy
		}
	}
	return nil
}
