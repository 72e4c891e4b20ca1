package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed role and policy reads. It implements
// RoleSource and PolicySource.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = "id, kind, display_name, created_at, updated_at"

// ListRoles returns every role record in store order.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+roleColumns+" FROM roles ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("authz: list roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("authz: scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: list roles: %w", err)
	}
	return roles, nil
}

// FindRole fetches a role by ID.
func (r *Repository) FindRole(ctx context.Context, id string) (Role, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+roleColumns+" FROM roles WHERE id = $1", id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, fmt.Errorf("authz: find role: %w", err)
	}
	return role, nil
}

// FindRoleByKind fetches the first role of a kind in store order.
func (r *Repository) FindRoleByKind(ctx context.Context, kind RoleKind) (Role, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE kind = $1 ORDER BY created_at LIMIT 1", string(kind))
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, fmt.Errorf("authz: find role by kind: %w", err)
	}
	return role, nil
}

// ListPolicies returns every policy of a role in store order.
func (r *Repository) ListPolicies(ctx context.Context, roleID string) ([]Policy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, role_id, entity, can_create, can_read, can_update, can_delete, created_at, updated_at
		 FROM policies WHERE role_id = $1 ORDER BY entity`, roleID)
	if err != nil {
		return nil, fmt.Errorf("authz: list policies: %w", err)
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		var p Policy
		var entity string
		if err := rows.Scan(&p.ID, &p.RoleID, &entity, &p.CanCreate, &p.CanRead, &p.CanUpdate, &p.CanDelete, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("authz: scan policy: %w", err)
		}
		p.Entity = Entity(entity)
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: list policies: %w", err)
	}
	return policies, nil
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	var kind string
	if err := row.Scan(&role.ID, &kind, &role.DisplayName, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, err
	}
	role.Kind = RoleKind(kind)
	return role, nil
}

var (
	_ RoleSource   = (*Repository)(nil)
	_ PolicySource = (*Repository)(nil)
)
