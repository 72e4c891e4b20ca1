package policies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// Handler manages policy administration endpoints, nested under a role.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers policy routes. Policy administration is gated like
// role administration, by the user entity permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionRead, authz.EntityUser))
		r.Get("/", h.listByRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionUpdate, authz.EntityUser))
		r.Put("/{entity}", h.upsert)
		r.Delete("/{entity}", h.delete)
	})
}

type policyResponse struct {
	ID        string `json:"id"`
	RoleID    string `json:"roleId"`
	Entity    string `json:"entity"`
	CanCreate bool   `json:"canCreate"`
	CanRead   bool   `json:"canRead"`
	CanUpdate bool   `json:"canUpdate"`
	CanDelete bool   `json:"canDelete"`
}

func toResponse(policy authz.Policy) policyResponse {
	return policyResponse{
		ID:        policy.ID,
		RoleID:    policy.RoleID,
		Entity:    string(policy.Entity),
		CanCreate: policy.CanCreate,
		CanRead:   policy.CanRead,
		CanUpdate: policy.CanUpdate,
		CanDelete: policy.CanDelete,
	}
}

func (h *Handler) listByRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	policies, err := h.service.ListByRole(r.Context(), roleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]policyResponse, 0, len(policies))
	for _, policy := range policies {
		out = append(out, toResponse(policy))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type upsertPolicyRequest struct {
	CanCreate bool `json:"canCreate"`
	CanRead   bool `json:"canRead"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertPolicyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	policy, err := h.service.Upsert(r.Context(), UpsertInput{
		RoleID:    chi.URLParam(r, "roleID"),
		Entity:    authz.Entity(chi.URLParam(r, "entity")),
		CanCreate: req.CanCreate,
		CanRead:   req.CanRead,
		CanUpdate: req.CanUpdate,
		CanDelete: req.CanDelete,
	})
	if err != nil {
		h.logger.Error("upsert policy", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(policy))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "roleID"), authz.Entity(chi.URLParam(r, "entity")))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
