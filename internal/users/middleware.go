package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// actorHeader names the authenticated subject set by the upstream gateway.
// The API trusts the gateway; sign-in itself lives outside this service.
const actorHeader = "X-Actor-ID"

// ActorMiddleware resolves the request's actor and stores it in context.
// Requests without a resolvable actor proceed with a nil actor, which every
// permission check denies.
func ActorMiddleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(actorHeader)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := service.Actor(r.Context(), id)
			if err != nil {
				if !errors.Is(err, httpx.ErrNotFound) && logger != nil {
					logger.Warn("resolve actor", slog.String("actor_id", id), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := authz.ContextWithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
