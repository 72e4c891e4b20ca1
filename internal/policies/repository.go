package policies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for policy records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const policyColumns = "id, role_id, entity, can_create, can_read, can_update, can_delete, created_at, updated_at"

// ListByRole returns the policies of one role ordered by entity.
func (r *Repository) ListByRole(ctx context.Context, roleID string) ([]authz.Policy, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE role_id = $1 ORDER BY entity", roleID)
	if err != nil {
		return nil, fmt.Errorf("policies: list: %w", err)
	}
	defer rows.Close()

	var out []authz.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("policies: scan: %w", err)
		}
		out = append(out, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("policies: list: %w", err)
	}
	return out, nil
}

// Upsert writes the policy record for a (role, entity) pair, inserting or
// replacing the flags in place. The unique index on (role_id, entity) keeps
// at most one record per pair.
func (r *Repository) Upsert(ctx context.Context, policy authz.Policy) (authz.Policy, error) {
	if policy.ID == "" {
		policy.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO policies (id, role_id, entity, can_create, can_read, can_update, can_delete, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 ON CONFLICT (role_id, entity) DO UPDATE SET
		   can_create = EXCLUDED.can_create,
		   can_read = EXCLUDED.can_read,
		   can_update = EXCLUDED.can_update,
		   can_delete = EXCLUDED.can_delete,
		   updated_at = NOW()
		 RETURNING `+policyColumns,
		policy.ID, policy.RoleID, string(policy.Entity),
		policy.CanCreate, policy.CanRead, policy.CanUpdate, policy.CanDelete)
	stored, err := scanPolicy(row)
	if err != nil {
		return authz.Policy{}, fmt.Errorf("policies: upsert: %w", err)
	}
	return stored, nil
}

// Delete removes the policy for a (role, entity) pair.
func (r *Repository) Delete(ctx context.Context, roleID string, entity authz.Entity) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM policies WHERE role_id = $1 AND entity = $2", roleID, string(entity))
	if err != nil {
		return fmt.Errorf("policies: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanPolicy(row pgx.Row) (authz.Policy, error) {
	var p authz.Policy
	var entity string
	err := row.Scan(&p.ID, &p.RoleID, &entity, &p.CanCreate, &p.CanRead, &p.CanUpdate, &p.CanDelete, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.Policy{}, httpx.ErrNotFound
		}
		return authz.Policy{}, err
	}
	p.Entity = authz.Entity(entity)
	return p, nil
}
