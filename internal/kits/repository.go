package kits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emskit/emskit/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for kits.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const kitColumns = "id, name, COALESCE(vehicle_id, ''), created_at, updated_at"

// ListKits returns all kits in creation order.
func (r *Repository) ListKits(ctx context.Context) ([]Kit, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+kitColumns+" FROM kits ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("kits: list: %w", err)
	}
	defer rows.Close()

	var out []Kit
	for rows.Next() {
		var kit Kit
		if err := rows.Scan(&kit.ID, &kit.Name, &kit.VehicleID, &kit.CreatedAt, &kit.UpdatedAt); err != nil {
			return nil, fmt.Errorf("kits: scan: %w", err)
		}
		out = append(out, kit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kits: list: %w", err)
	}
	return out, nil
}

// GetKit fetches a kit by ID.
func (r *Repository) GetKit(ctx context.Context, id string) (Kit, error) {
	var kit Kit
	err := r.pool.QueryRow(ctx, "SELECT "+kitColumns+" FROM kits WHERE id = $1", id).
		Scan(&kit.ID, &kit.Name, &kit.VehicleID, &kit.CreatedAt, &kit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Kit{}, httpx.ErrNotFound
		}
		return Kit{}, fmt.Errorf("kits: get: %w", err)
	}
	return kit, nil
}

// CreateKit inserts a new kit.
func (r *Repository) CreateKit(ctx context.Context, kit Kit) (Kit, error) {
	kit.ID = uuid.NewString()
	var stored Kit
	err := r.pool.QueryRow(ctx,
		`INSERT INTO kits (id, name, vehicle_id, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), NOW(), NOW())
		 RETURNING `+kitColumns,
		kit.ID, kit.Name, kit.VehicleID).
		Scan(&stored.ID, &stored.Name, &stored.VehicleID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return Kit{}, fmt.Errorf("kits: create: %w", err)
	}
	return stored, nil
}

// UpdateKit changes name and vehicle assignment.
func (r *Repository) UpdateKit(ctx context.Context, id, name, vehicleID string) (Kit, error) {
	var kit Kit
	err := r.pool.QueryRow(ctx,
		`UPDATE kits SET name = $2, vehicle_id = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+kitColumns,
		id, name, vehicleID).
		Scan(&kit.ID, &kit.Name, &kit.VehicleID, &kit.CreatedAt, &kit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Kit{}, httpx.ErrNotFound
		}
		return Kit{}, fmt.Errorf("kits: update: %w", err)
	}
	return kit, nil
}

// DeleteKit removes a kit record.
func (r *Repository) DeleteKit(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM kits WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("kits: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
