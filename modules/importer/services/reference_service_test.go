package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type stubTx struct {
	pgx.Tx
}

func refCtx(tenantID uuid.UUID) context.Context {
	ctx := composables.WithTenantID(context.Background(), tenantID)
	return composables.WithTx(ctx, stubTx{})
}

func TestReferenceService_CreateDrawing(t *testing.T) {
	drawings := &memDrawingRepo{}
	svc := NewReferenceService(drawings, &memWelderRepo{})
	tenantID := uuid.New()
	projectID := uuid.New()

	dto := &drawing.CreateDTO{ProjectID: projectID, Number: "  P-35F11  ", Title: "Cooling water"}
	fields, ok := dto.Ok()
	require.True(t, ok, "unexpected validation errors: %v", fields)

	created, err := svc.CreateDrawing(refCtx(tenantID), dto)
	require.NoError(t, err)
	require.Equal(t, "P-35F11", created.Number())
	require.Equal(t, projectID, created.ProjectID())

	listed, err := svc.ListDrawings(refCtx(tenantID), projectID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestReferenceService_CreateDrawingRequiresTenant(t *testing.T) {
	svc := NewReferenceService(&memDrawingRepo{}, &memWelderRepo{})

	_, err := svc.CreateDrawing(context.Background(), &drawing.CreateDTO{
		ProjectID: uuid.New(),
		Number:    "P-1",
	})
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, "TENANT_REQUIRED", svcErr.Code)
}

func TestReferenceService_CreateDrawingValidation(t *testing.T) {
	dto := &drawing.CreateDTO{ProjectID: uuid.New(), Number: "   "}
	fields, ok := dto.Ok()
	require.False(t, ok)
	require.Contains(t, fields, "Number")
}

func TestReferenceService_VerifyWelder(t *testing.T) {
	tenantID := uuid.New()
	projectID := uuid.New()
	welders := &memWelderRepo{}
	created, err := welders.Create(context.Background(), welder.New(tenantID, projectID, "JD-7", "", welder.StatusUnverified))
	require.NoError(t, err)

	svc := NewReferenceService(&memDrawingRepo{}, welders)
	updated, err := svc.VerifyWelder(refCtx(tenantID), created.WelderID())
	require.NoError(t, err)
	require.Equal(t, welder.StatusVerified, updated.Status())
}

func TestReferenceService_VerifyWelderNotFound(t *testing.T) {
	svc := NewReferenceService(&memDrawingRepo{}, &memWelderRepo{})

	_, err := svc.VerifyWelder(refCtx(uuid.New()), uuid.New())
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, "WELDER_NOT_FOUND", svcErr.Code)
}
