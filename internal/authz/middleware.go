package authz

import (
	"log/slog"
	"net/http"
)

// Middleware wires authorization checks in front of HTTP handlers.
type Middleware struct {
	Engine *Engine
	Logger *slog.Logger
}

// Require ensures the request's actor holds the permission before the
// handler runs; otherwise it responds 403. The denial reason is logged, not
// exposed.
func (m Middleware) Require(action Action, entity Entity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			decision := m.Engine.Decide(r.Context(), action, entity, actor)
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Warn("request denied",
						slog.String("path", r.URL.Path),
						slog.String("action", string(action)),
						slog.String("entity", string(entity)),
						slog.String("reason", string(decision.Reason)))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
