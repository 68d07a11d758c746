package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/clachance14/pipetrak/modules/reporting/domain/earnedvalue"
	"github.com/clachance14/pipetrak/modules/reporting/services"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type stubTx struct {
	pgx.Tx
}

type mockReportRepo struct {
	groups []earnedvalue.GroupRow
	hours  []earnedvalue.ComponentHours
}

func (m *mockReportRepo) GroupedByDrawing(_ context.Context, _ uuid.UUID) ([]earnedvalue.GroupRow, error) {
	return m.groups, nil
}

func (m *mockReportRepo) ProjectHours(_ context.Context, _ uuid.UUID) ([]earnedvalue.ComponentHours, error) {
	return m.hours, nil
}

func tenantCtx(t *testing.T) context.Context {
	t.Helper()
	ctx := composables.WithTenantID(context.Background(), uuid.New())
	return composables.WithTx(ctx, stubTx{})
}

func f(v float64) *float64 { return &v }

func TestReportService_Manhours(t *testing.T) {
	repo := &mockReportRepo{
		groups: []earnedvalue.GroupRow{
			{Key: "P-35F11", ComponentCount: 2, EarnedHours: 50, AllocatedHours: 100},
			{Key: "P-35F12", ComponentCount: 4, EarnedHours: 150, AllocatedHours: 500},
		},
	}
	svc := services.NewReportService(repo)

	report, err := svc.Manhours(tenantCtx(t), services.ManhourReportInput{ProjectID: uuid.New()})
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	require.Equal(t, "P-35F11", report.Rows[0].Key)
	require.InDelta(t, 50.0, report.Rows[0].Percent, 1e-9)
	require.InDelta(t, 30.0, report.Rows[1].Percent, 1e-9)

	// With no explicit budget the allocated sum is the denominator.
	require.Equal(t, 600.0, report.TotalBudget)
	require.InDelta(t, 200.0, report.Total.EarnedHours, 1e-9)
	require.InDelta(t, 400.0, report.Total.RemainingHours, 1e-9)
	require.InDelta(t, 100.0*200.0/600.0, report.Total.Percent, 1e-9)
}

func TestReportService_ManhoursExplicitBudget(t *testing.T) {
	repo := &mockReportRepo{
		groups: []earnedvalue.GroupRow{
			{Key: "P-35F11", ComponentCount: 3, EarnedHours: 0, AllocatedHours: 600},
		},
	}
	svc := services.NewReportService(repo)

	report, err := svc.Manhours(tenantCtx(t), services.ManhourReportInput{
		ProjectID:   uuid.New(),
		TotalBudget: f(1000),
	})
	require.NoError(t, err)

	require.Equal(t, 1000.0, report.TotalBudget)
	require.Equal(t, 0.0, report.Total.EarnedHours)
	require.Equal(t, 600.0, report.Total.AllocatedHours)
	require.Equal(t, 1000.0, report.Total.RemainingHours)
	require.Equal(t, 0.0, report.Total.Percent)
}

func TestReportService_ManhoursRequiresTenant(t *testing.T) {
	svc := services.NewReportService(&mockReportRepo{})

	_, err := svc.Manhours(context.Background(), services.ManhourReportInput{ProjectID: uuid.New()})
	require.Error(t, err)
	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, "TENANT_REQUIRED", svcErr.Code)
}

func TestReportService_ProjectSummary(t *testing.T) {
	repo := &mockReportRepo{
		hours: []earnedvalue.ComponentHours{
			{BudgetedHours: f(100), PercentComplete: f(50)},
			{BudgetedHours: f(200), PercentComplete: f(75)},
			{BudgetedHours: nil, PercentComplete: f(100)},
		},
	}
	svc := services.NewReportService(repo)

	summary, err := svc.ProjectSummary(tenantCtx(t), uuid.New(), nil)
	require.NoError(t, err)
	require.InDelta(t, 200.0, summary.EarnedHours, 1e-9)
	require.Equal(t, 300.0, summary.AllocatedHours)
	require.InDelta(t, 100.0*200.0/300.0, summary.Percent, 1e-9)
}
