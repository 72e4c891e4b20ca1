// Seeds the three built-in roles, a full-access policy set for the
// programmer role, and an initial programmer account. Idempotent: existing
// records are left alone.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/emskit/emskit/internal/app"
	"github.com/emskit/emskit/internal/authz"
)

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		slog.Default().Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		slog.Default().Error("seed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println("seed complete")
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	roleIDs := make(map[authz.RoleKind]string)
	for kind, name := range map[authz.RoleKind]string{
		authz.RoleProgrammer: "Programmer",
		authz.RoleLogistics:  "Logistics",
		authz.RoleSanitary:   "Sanitary",
	} {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO roles (id, kind, display_name) VALUES ($1, $2, $3)
			 ON CONFLICT (kind) DO UPDATE SET display_name = roles.display_name
			 RETURNING id`,
			uuid.NewString(), string(kind), name).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", kind, err)
		}
		roleIDs[kind] = id
	}

	// Programmer gets full access on every entity.
	for _, entity := range authz.Entities() {
		_, err := pool.Exec(ctx,
			`INSERT INTO policies (id, role_id, entity, can_create, can_read, can_update, can_delete)
			 VALUES ($1, $2, $3, TRUE, TRUE, TRUE, TRUE)
			 ON CONFLICT (role_id, entity) DO NOTHING`,
			uuid.NewString(), roleIDs[authz.RoleProgrammer], string(entity))
		if err != nil {
			return fmt.Errorf("seed policy %s: %w", entity, err)
		}
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, role_id, active)
		 VALUES ($1, 'admin@emskit.local', 'Administrator', $2, $3, TRUE)
		 ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), string(hash), roleIDs[authz.RoleProgrammer])
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
