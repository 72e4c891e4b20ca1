package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emskit/emskit/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = "id, email, name, password_hash, COALESCE(role_id, ''), active, created_at, updated_at"

// ListUsers returns all users in creation order.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return out, nil
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, fmt.Errorf("users: get: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user record.
func (r *Repository) CreateUser(ctx context.Context, user User) (User, error) {
	user.ID = uuid.NewString()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, name, password_hash, role_id, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NOW(), NOW())
		 RETURNING `+userColumns,
		user.ID, user.Email, user.Name, user.PasswordHash, user.RoleID, user.Active)
	stored, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, fmt.Errorf("users: email %s taken: %w", user.Email, httpx.ErrDuplicate)
		}
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	return stored, nil
}

// UpdateUser changes name, role assignment and active flag.
func (r *Repository) UpdateUser(ctx context.Context, id, name, roleID string, active bool) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, role_id = NULLIF($3, ''), active = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, name, roleID, active)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, fmt.Errorf("users: update: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user record.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.RoleID, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
