package kits

import (
	"context"
	"fmt"
	"strings"

	"github.com/emskit/emskit/internal/audit"
	"github.com/emskit/emskit/internal/authz"
	"github.com/emskit/emskit/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	ListKits(ctx context.Context) ([]Kit, error)
	GetKit(ctx context.Context, id string) (Kit, error)
	CreateKit(ctx context.Context, kit Kit) (Kit, error)
	UpdateKit(ctx context.Context, id, name, vehicleID string) (Kit, error)
	DeleteKit(ctx context.Context, id string) error
}

// AuthorizerPort is the decision function every operation runs through.
type AuthorizerPort interface {
	Allowed(ctx context.Context, action authz.Action, entity authz.Entity, actor *authz.Actor) bool
}

// AuditPort abstracts the fire-and-forget audit sink.
type AuditPort interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service coordinates kit operations. Every write checks the engine first
// and translates a denial into ErrForbidden; the engine itself never errors,
// so the typed error is produced here, at the gated call site.
type Service struct {
	repo       RepositoryPort
	authorizer AuthorizerPort
	audit      AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, authorizer AuthorizerPort, sink AuditPort) *Service {
	return &Service{repo: repo, authorizer: authorizer, audit: sink}
}

// CreateKitInput carries the fields for a new kit.
type CreateKitInput struct {
	Name      string
	VehicleID string
}

// UpdateKitInput carries mutable kit fields.
type UpdateKitInput struct {
	Name      string
	VehicleID string
}

// ListKits returns all kits the actor may read.
func (s *Service) ListKits(ctx context.Context, actor *authz.Actor) ([]Kit, error) {
	if !s.authorizer.Allowed(ctx, authz.ActionRead, authz.EntityKit, actor) {
		return nil, fmt.Errorf("kits: read denied: %w", httpx.ErrForbidden)
	}
	return s.repo.ListKits(ctx)
}

// GetKit returns one kit by ID.
func (s *Service) GetKit(ctx context.Context, actor *authz.Actor, id string) (Kit, error) {
	if !s.authorizer.Allowed(ctx, authz.ActionRead, authz.EntityKit, actor) {
		return Kit{}, fmt.Errorf("kits: read denied: %w", httpx.ErrForbidden)
	}
	return s.repo.GetKit(ctx, id)
}

// CreateKit registers a new kit and records the action.
func (s *Service) CreateKit(ctx context.Context, actor *authz.Actor, input CreateKitInput) (Kit, error) {
	if !s.authorizer.Allowed(ctx, authz.ActionCreate, authz.EntityKit, actor) {
		return Kit{}, fmt.Errorf("kits: create denied: %w", httpx.ErrForbidden)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Kit{}, fmt.Errorf("kits: name required: %w", httpx.ErrValidation)
	}
	kit, err := s.repo.CreateKit(ctx, Kit{Name: name, VehicleID: input.VehicleID})
	if err != nil {
		return Kit{}, err
	}
	s.recordAudit(ctx, actor, authz.ActionCreate, kit.ID, map[string]any{"name": kit.Name})
	return kit, nil
}

// UpdateKit changes a kit and records the action.
func (s *Service) UpdateKit(ctx context.Context, actor *authz.Actor, id string, input UpdateKitInput) (Kit, error) {
	if !s.authorizer.Allowed(ctx, authz.ActionUpdate, authz.EntityKit, actor) {
		return Kit{}, fmt.Errorf("kits: update denied: %w", httpx.ErrForbidden)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Kit{}, fmt.Errorf("kits: name required: %w", httpx.ErrValidation)
	}
	kit, err := s.repo.UpdateKit(ctx, id, name, input.VehicleID)
	if err != nil {
		return Kit{}, err
	}
	s.recordAudit(ctx, actor, authz.ActionUpdate, kit.ID, map[string]any{"name": kit.Name})
	return kit, nil
}

// DeleteKit removes a kit and records the action.
func (s *Service) DeleteKit(ctx context.Context, actor *authz.Actor, id string) error {
	if !s.authorizer.Allowed(ctx, authz.ActionDelete, authz.EntityKit, actor) {
		return fmt.Errorf("kits: delete denied: %w", httpx.ErrForbidden)
	}
	if err := s.repo.DeleteKit(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, authz.ActionDelete, id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor *authz.Actor, action authz.Action, kitID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:  actorID,
		Action:   string(action),
		Entity:   string(authz.EntityKit),
		EntityID: kitID,
		Details:  details,
	})
}
