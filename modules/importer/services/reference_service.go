package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
	"github.com/clachance14/pipetrak/pkg/composables"
)

// ReferenceService manages the reference data imports resolve against:
// drawings and welders.
type ReferenceService struct {
	drawings drawing.Repository
	welders  welder.Repository
}

func NewReferenceService(drawings drawing.Repository, welders welder.Repository) *ReferenceService {
	return &ReferenceService{drawings: drawings, welders: welders}
}

func (s *ReferenceService) CreateDrawing(ctx context.Context, dto *drawing.CreateDTO) (drawing.Drawing, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return drawing.Drawing{}, newServiceError(http.StatusUnauthorized, "TENANT_REQUIRED", "drawing creation requires a tenant", err)
	}
	created, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (drawing.Drawing, error) {
		return s.drawings.Create(txCtx, dto.ToEntity(tenantID))
	})
	if err != nil {
		return drawing.Drawing{}, mapReferenceError(err)
	}
	return created, nil
}

func (s *ReferenceService) ListDrawings(ctx context.Context, projectID uuid.UUID) ([]drawing.Drawing, error) {
	out, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]drawing.Drawing, error) {
		return s.drawings.ListByProject(txCtx, projectID)
	})
	if err != nil {
		return nil, mapReferenceError(err)
	}
	return out, nil
}

func (s *ReferenceService) ListWelders(ctx context.Context, projectID uuid.UUID) ([]welder.Welder, error) {
	out, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]welder.Welder, error) {
		return s.welders.ListByProject(txCtx, projectID)
	})
	if err != nil {
		return nil, mapReferenceError(err)
	}
	return out, nil
}

// VerifyWelder flips an auto-created welder to verified status.
func (s *ReferenceService) VerifyWelder(ctx context.Context, welderID uuid.UUID) (welder.Welder, error) {
	updated, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (welder.Welder, error) {
		return s.welders.SetStatus(txCtx, welderID, welder.StatusVerified)
	})
	if err != nil {
		return welder.Welder{}, mapReferenceError(err)
	}
	return updated, nil
}
