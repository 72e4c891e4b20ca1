package authz

import "time"

// Action is a CRUD operation a policy can grant or deny.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every action in evaluation order.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// Entity is a resource type access checks are scoped to.
type Entity string

const (
	EntityBase        Entity = "base"
	EntityVehicle     Entity = "vehicle"
	EntityKit         Entity = "kit"
	EntityCatalogItem Entity = "catalog_item"
	EntityKitItem     Entity = "kit_item"
	EntityUser        Entity = "user"
	EntityCategory    Entity = "category"
	EntityUnit        Entity = "unit"
	EntityAudit       Entity = "audit"
)

// Entities lists every gated resource type.
func Entities() []Entity {
	return []Entity{
		EntityBase,
		EntityVehicle,
		EntityKit,
		EntityCatalogItem,
		EntityKitItem,
		EntityUser,
		EntityCategory,
		EntityUnit,
		EntityAudit,
	}
}

// Valid reports whether e is one of the known entity types.
func (e Entity) Valid() bool {
	switch e {
	case EntityBase, EntityVehicle, EntityKit, EntityCatalogItem,
		EntityKitItem, EntityUser, EntityCategory, EntityUnit, EntityAudit:
		return true
	}
	return false
}

// RoleKind discriminates the built-in role profiles.
type RoleKind string

const (
	RoleProgrammer RoleKind = "programmer"
	RoleLogistics  RoleKind = "logistics"
	RoleSanitary   RoleKind = "sanitary"
)

// Valid reports whether k is a known role kind.
func (k RoleKind) Valid() bool {
	switch k {
	case RoleProgrammer, RoleLogistics, RoleSanitary:
		return true
	}
	return false
}

// Role is a named permission profile actors are assigned. Kind is immutable
// after creation.
type Role struct {
	ID          string
	Kind        RoleKind
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Policy holds the four CRUD permission flags for one (role, entity) pair.
type Policy struct {
	ID        string
	RoleID    string
	Entity    Entity
	CanCreate bool
	CanRead   bool
	CanUpdate bool
	CanDelete bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPermission dispatches to the flag matching the action. Unknown actions
// are denied.
func (p Policy) HasPermission(action Action) bool {
	switch action {
	case ActionCreate:
		return p.CanCreate
	case ActionRead:
		return p.CanRead
	case ActionUpdate:
		return p.CanUpdate
	case ActionDelete:
		return p.CanDelete
	}
	return false
}

// HasFullAccess reports whether all four flags are granted.
func (p Policy) HasFullAccess() bool {
	return p.CanCreate && p.CanRead && p.CanUpdate && p.CanDelete
}

// IsReadOnly reports whether read is the only granted flag.
func (p Policy) IsReadOnly() bool {
	return p.CanRead && !p.CanCreate && !p.CanUpdate && !p.CanDelete
}

// Actor is the read-only view of the user a check runs on behalf of. A nil
// *Actor means no authenticated user.
type Actor struct {
	ID     string
	RoleID string
	Active bool
}

// PermissionSet aggregates the per-action decisions for one entity type.
type PermissionSet struct {
	CanCreate bool `json:"canCreate"`
	CanRead   bool `json:"canRead"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
}

// DenyReason explains why a decision came back negative. The boolean contract
// of Allowed does not depend on it; it exists for logging and diagnostics.
type DenyReason string

const (
	DenyNone         DenyReason = ""
	DenyNoActor      DenyReason = "no_actor"
	DenyNoRole       DenyReason = "no_role"
	DenyRoleNotFound DenyReason = "role_not_found"
	DenyNoPolicy     DenyReason = "no_policy"
	DenyPolicyDenies DenyReason = "policy_denies"
)

// Decision is the outcome of a single permission check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}
