package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emskit/emskit/internal/kits"
	"github.com/emskit/emskit/internal/policies"
	"github.com/emskit/emskit/internal/roles"
	"github.com/emskit/emskit/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Pool            *pgxpool.Pool
	ActorMiddleware func(http.Handler) http.Handler
	RolesHandler    *roles.Handler
	PoliciesHandler *policies.Handler
	UsersHandler    *users.Handler
	KitsHandler     *kits.Handler
}

// NewRouter constructs the chi.Router with emskit defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.ActorMiddleware != nil {
			r.Use(params.ActorMiddleware)
		}
		r.Route("/roles", func(r chi.Router) {
			params.RolesHandler.MountRoutes(r)
			r.Route("/{roleID}/policies", params.PoliciesHandler.MountRoutes)
		})
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/kits", params.KitsHandler.MountRoutes)
	})

	return r
}
