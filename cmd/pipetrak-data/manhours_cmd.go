package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	reportpersistence "github.com/clachance14/pipetrak/modules/reporting/infrastructure/persistence"
	"github.com/clachance14/pipetrak/modules/reporting/services"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type manhoursOutput struct {
	Command    string                 `json:"command"`
	DurationMS int64                  `json:"duration_ms"`
	Report     services.ManhourReport `json:"report"`
}

func newManhoursCmd() *cobra.Command {
	var (
		tenantID    string
		projectID   string
		totalBudget float64
	)

	cmd := &cobra.Command{
		Use:   "manhours",
		Short: "Print the earned-value manhour report for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := uuid.Parse(tenantID)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			pid, err := uuid.Parse(projectID)
			if err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			ctx = composables.WithTenantID(ctx, tid)
			svc := services.NewReportService(reportpersistence.NewReportRepository())

			input := services.ManhourReportInput{ProjectID: pid}
			if cmd.Flags().Changed("total-budget") {
				input.TotalBudget = &totalBudget
			}

			start := time.Now()
			report, err := svc.Manhours(ctx, input)
			if err != nil {
				return err
			}
			return writeJSON(manhoursOutput{
				Command:    "manhours",
				DurationMS: time.Since(start).Milliseconds(),
				Report:     report,
			})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&projectID, "project", "", "Project UUID (required)")
	cmd.Flags().Float64Var(&totalBudget, "total-budget", 0, "Budget denominator override (defaults to allocated hours)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
