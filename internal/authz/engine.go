package authz

import "context"

// Engine is the single decision point for permission checks. It performs no
// writes and never returns an error: every way a check can fail (no actor,
// no role assignment, unresolvable role, missing policy) is a denial.
//
// The engine does not consult Actor.Active. Activity gating happens at
// sign-in, before an actor reaches this layer.
type Engine struct {
	registry *RoleRegistry
	policies *PolicyStore
}

// NewEngine builds an engine over the cache-backed registry and policy store.
func NewEngine(registry *RoleRegistry, policies *PolicyStore) *Engine {
	return &Engine{registry: registry, policies: policies}
}

// Decide runs one permission check and reports the outcome with its reason.
func (e *Engine) Decide(ctx context.Context, action Action, entity Entity, actor *Actor) Decision {
	if actor == nil {
		return Decision{Reason: DenyNoActor}
	}
	if actor.RoleID == "" {
		return Decision{Reason: DenyNoRole}
	}
	role := e.registry.GetRole(ctx, actor.RoleID)
	if role == nil {
		return Decision{Reason: DenyRoleNotFound}
	}
	policy := e.policies.GetPolicy(ctx, role.ID, entity)
	if policy == nil {
		return Decision{Reason: DenyNoPolicy}
	}
	if !policy.HasPermission(action) {
		return Decision{Reason: DenyPolicyDenies}
	}
	return Decision{Allowed: true}
}

// Allowed reports whether the actor may perform the action on the entity
// type. It is the boolean face of Decide.
func (e *Engine) Allowed(ctx context.Context, action Action, entity Entity, actor *Actor) bool {
	return e.Decide(ctx, action, entity, actor).Allowed
}

// Permissions evaluates all four actions for one entity type. Each flag
// takes the same path as Allowed, so an unresolvable actor or role yields
// all-false rather than leaking a missing-policy state.
func (e *Engine) Permissions(ctx context.Context, entity Entity, actor *Actor) PermissionSet {
	return PermissionSet{
		CanCreate: e.Allowed(ctx, ActionCreate, entity, actor),
		CanRead:   e.Allowed(ctx, ActionRead, entity, actor),
		CanUpdate: e.Allowed(ctx, ActionUpdate, entity, actor),
		CanDelete: e.Allowed(ctx, ActionDelete, entity, actor),
	}
}

// CanCreateKits reports whether the actor may register new medical kits.
func (e *Engine) CanCreateKits(ctx context.Context, actor *Actor) bool {
	return e.Allowed(ctx, ActionCreate, EntityKit, actor)
}

// CanCreateVehicles reports whether the actor may register new vehicles.
func (e *Engine) CanCreateVehicles(ctx context.Context, actor *Actor) bool {
	return e.Allowed(ctx, ActionCreate, EntityVehicle, actor)
}

// CanEditThresholds reports whether the actor may change kit item restock
// thresholds.
func (e *Engine) CanEditThresholds(ctx context.Context, actor *Actor) bool {
	return e.Allowed(ctx, ActionUpdate, EntityKitItem, actor)
}

// CanUpdateStock reports whether the actor may adjust kit item quantities.
func (e *Engine) CanUpdateStock(ctx context.Context, actor *Actor) bool {
	return e.Allowed(ctx, ActionUpdate, EntityKitItem, actor)
}

// CanManageUsers reports whether the actor may administer user accounts.
// Managing requires both create and delete on users; update alone does not
// qualify.
func (e *Engine) CanManageUsers(ctx context.Context, actor *Actor) bool {
	return e.Allowed(ctx, ActionCreate, EntityUser, actor) &&
		e.Allowed(ctx, ActionDelete, EntityUser, actor)
}
