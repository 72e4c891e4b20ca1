package kits

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// Handler manages kit endpoints. Authorization happens in the service, per
// operation; the handler only shapes requests and responses.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers kit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type kitResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	VehicleID string    `json:"vehicleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(kit Kit) kitResponse {
	return kitResponse{
		ID:        kit.ID,
		Name:      kit.Name,
		VehicleID: kit.VehicleID,
		CreatedAt: kit.CreatedAt,
		UpdatedAt: kit.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	kits, err := h.service.ListKits(r.Context(), authz.ActorFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]kitResponse, 0, len(kits))
	for _, kit := range kits {
		out = append(out, toResponse(kit))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	kit, err := h.service.GetKit(r.Context(), authz.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(kit))
}

type kitRequest struct {
	Name      string `json:"name" validate:"required"`
	VehicleID string `json:"vehicleId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req kitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	kit, err := h.service.CreateKit(r.Context(), authz.ActorFromContext(r.Context()), CreateKitInput{
		Name:      req.Name,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		h.logger.Error("create kit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(kit))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req kitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	kit, err := h.service.UpdateKit(r.Context(), authz.ActorFromContext(r.Context()), chi.URLParam(r, "id"), UpdateKitInput{
		Name:      req.Name,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(kit))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteKit(r.Context(), authz.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
