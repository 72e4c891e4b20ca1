package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for role records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = "id, kind, display_name, created_at, updated_at"

// ListRoles returns all roles in creation order.
func (r *Repository) ListRoles(ctx context.Context) ([]authz.Role, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+roleColumns+" FROM roles ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	var roles []authz.Role
	for rows.Next() {
		var role authz.Role
		var kind string
		if err := rows.Scan(&role.ID, &kind, &role.DisplayName, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("roles: scan: %w", err)
		}
		role.Kind = authz.RoleKind(kind)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	return roles, nil
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id string) (authz.Role, error) {
	var role authz.Role
	var kind string
	err := r.pool.QueryRow(ctx, "SELECT "+roleColumns+" FROM roles WHERE id = $1", id).
		Scan(&role.ID, &kind, &role.DisplayName, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.Role{}, httpx.ErrNotFound
		}
		return authz.Role{}, fmt.Errorf("roles: get: %w", err)
	}
	role.Kind = authz.RoleKind(kind)
	return role, nil
}

// CreateRole inserts a new role. The unique index on kind rejects a second
// role of the same kind.
func (r *Repository) CreateRole(ctx context.Context, kind authz.RoleKind, displayName string) (authz.Role, error) {
	id := uuid.NewString()
	var role authz.Role
	var kindRow string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (id, kind, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING `+roleColumns,
		id, string(kind), displayName).
		Scan(&role.ID, &kindRow, &role.DisplayName, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return authz.Role{}, fmt.Errorf("roles: kind %s already exists: %w", kind, httpx.ErrDuplicate)
		}
		return authz.Role{}, fmt.Errorf("roles: create: %w", err)
	}
	role.Kind = authz.RoleKind(kindRow)
	return role, nil
}

// UpdateRole changes the display name of a role. Kind is immutable and has
// no update path.
func (r *Repository) UpdateRole(ctx context.Context, id, displayName string) (authz.Role, error) {
	var role authz.Role
	var kind string
	err := r.pool.QueryRow(ctx,
		`UPDATE roles SET display_name = $2, updated_at = NOW() WHERE id = $1
		 RETURNING `+roleColumns,
		id, displayName).
		Scan(&role.ID, &kind, &role.DisplayName, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.Role{}, httpx.ErrNotFound
		}
		return authz.Role{}, fmt.Errorf("roles: update: %w", err)
	}
	role.Kind = authz.RoleKind(kind)
	return role, nil
}

// DeleteRole removes a role and its policies.
func (r *Repository) DeleteRole(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("roles: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
