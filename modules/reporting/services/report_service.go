package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/reporting/domain/earnedvalue"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// ManhourReportInput selects the project to report on. TotalBudget overrides
// the denominator of the grand total; when nil the allocated sum stands in
// for it.
type ManhourReportInput struct {
	ProjectID   uuid.UUID
	TotalBudget *float64
}

// ManhourReport is the earned-value report for one project: one row per
// drawing plus a recomputed grand total.
type ManhourReport struct {
	ProjectID   uuid.UUID
	TotalBudget float64
	Rows        []earnedvalue.ManhourRow
	Total       earnedvalue.Summary
}

type ReportService struct {
	reports earnedvalue.Repository
}

func NewReportService(reports earnedvalue.Repository) *ReportService {
	return &ReportService{reports: reports}
}

// Manhours builds the per-drawing manhour report for a project. The grand
// total percent is always earned hours over the budget denominator, never an
// average of row percentages.
func (s *ReportService) Manhours(ctx context.Context, input ManhourReportInput) (ManhourReport, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return ManhourReport{}, newServiceError(http.StatusUnauthorized, "TENANT_REQUIRED", "reports require a tenant", err)
	}

	report, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (ManhourReport, error) {
		groups, err := s.reports.GroupedByDrawing(txCtx, input.ProjectID)
		if err != nil {
			return ManhourReport{}, err
		}

		totalBudget := 0.0
		for _, g := range groups {
			totalBudget += g.AllocatedHours
		}
		if input.TotalBudget != nil {
			totalBudget = *input.TotalBudget
		}

		rows, total := earnedvalue.BuildReport(groups, totalBudget)
		return ManhourReport{
			ProjectID:   input.ProjectID,
			TotalBudget: totalBudget,
			Rows:        rows,
			Total:       total,
		}, nil
	})
	if err != nil {
		return ManhourReport{}, err
	}
	return report, nil
}

// ProjectSummary rolls up every component of a project into a single summary
// against totalBudget. A nil totalBudget defaults to the allocated sum.
func (s *ReportService) ProjectSummary(ctx context.Context, projectID uuid.UUID, totalBudget *float64) (earnedvalue.Summary, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return earnedvalue.Summary{}, newServiceError(http.StatusUnauthorized, "TENANT_REQUIRED", "reports require a tenant", err)
	}

	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (earnedvalue.Summary, error) {
		rows, err := s.reports.ProjectHours(txCtx, projectID)
		if err != nil {
			return earnedvalue.Summary{}, err
		}

		budget := 0.0
		if totalBudget != nil {
			budget = *totalBudget
		} else {
			for _, row := range rows {
				if row.BudgetedHours != nil {
					budget += *row.BudgetedHours
				}
			}
		}
		return earnedvalue.Rollup(rows, budget), nil
	})
}
