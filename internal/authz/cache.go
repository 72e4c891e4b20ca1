package authz

import "sync"

// Cache memoizes role and policy lookups for the lifetime of the process.
// Entries have no TTL; they persist until cleared explicitly. The cache is
// constructed once at startup and injected wherever lookups are made rather
// than held as a package-level singleton.
//
// Two facets are kept per role ID: the resolved Role and the role's full
// policy list. An empty policy list is a valid cached value and is stored the
// same way as a populated one.
type Cache struct {
	mu       sync.Mutex
	gen      uint64
	roles    map[string]Role
	policies map[string][]Policy
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{
		roles:    make(map[string]Role),
		policies: make(map[string][]Policy),
	}
}

// Generation returns the current clear-generation. Callers filling the cache
// after a store fetch pass the generation observed at miss time; if any clear
// happened in between, the fill is discarded so a cleared entry cannot be
// resurrected by an in-flight load.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Role returns the cached role for id, if present.
func (c *Cache) Role(id string) (Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role, ok := c.roles[id]
	return role, ok
}

// Policies returns the cached policy list for roleID, if present.
func (c *Cache) Policies(roleID string) ([]Policy, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	policies, ok := c.policies[roleID]
	return policies, ok
}

// StoreRole caches a resolved role. The write is dropped when gen is stale.
func (c *Cache) StoreRole(gen uint64, role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.roles[role.ID] = role
}

// StorePolicies caches the policy list of one role, empty lists included.
// The write is dropped when gen is stale.
func (c *Cache) StorePolicies(gen uint64, roleID string, policies []Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.policies[roleID] = policies
}

// Clear drops every entry from both facets.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.roles = make(map[string]Role)
	c.policies = make(map[string][]Policy)
}

// ClearRole drops the cached role object and policy list for one role ID,
// leaving other roles untouched.
func (c *Cache) ClearRole(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	delete(c.roles, id)
	delete(c.policies, id)
}
