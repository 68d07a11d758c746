package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clachance14/pipetrak/modules/importer/domain/weldimport"
	importpersistence "github.com/clachance14/pipetrak/modules/importer/infrastructure/persistence"
	"github.com/clachance14/pipetrak/modules/importer/services"
	progresspersistence "github.com/clachance14/pipetrak/modules/progress/infrastructure/persistence"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/configuration"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

type importOutput struct {
	Command      string                `json:"command"`
	DurationMS   int64                 `json:"duration_ms"`
	TotalRows    int                   `json:"total_rows"`
	SuccessCount int                   `json:"success_count"`
	ErrorCount   int                   `json:"error_count"`
	Errors       []weldimport.RowError `json:"errors,omitempty"`
}

func newImportWeldsCmd() *cobra.Command {
	var (
		tenantID  string
		projectID string
		filePath  string
	)

	cmd := &cobra.Command{
		Use:   "import-welds",
		Short: "Import a weld log CSV into a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := uuid.Parse(tenantID)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			pid, err := uuid.Parse(projectID)
			if err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}

			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("open %s: %w", filePath, err)
			}
			defer func() { _ = f.Close() }()

			rows, err := weldimport.ReadCSV(f)
			if err != nil {
				return err
			}
			if max := configuration.Use().Import.MaxRows; len(rows) > max {
				return fmt.Errorf("row count %d exceeds limit %d", len(rows), max)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			ctx = composables.WithTenantID(ctx, tid)
			svc := services.NewImportService(
				importpersistence.NewDrawingRepository(),
				importpersistence.NewWelderRepository(),
				importpersistence.NewWeldRepository(),
				progresspersistence.NewComponentRepository(),
				progresspersistence.NewConfigRepository(),
				eventbus.NewEventPublisher(configuration.Use().Logger()),
			)
			if _, err := svc.EnsureWeldConfig(ctx); err != nil {
				return err
			}

			start := time.Now()
			result, err := svc.ImportWelds(ctx, pid, rows)
			if err != nil {
				return err
			}
			return writeJSON(importOutput{
				Command:      "import-welds",
				DurationMS:   time.Since(start).Milliseconds(),
				TotalRows:    len(rows),
				SuccessCount: result.SuccessCount,
				ErrorCount:   result.ErrorCount,
				Errors:       result.Errors,
			})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&projectID, "project", "", "Project UUID (required)")
	cmd.Flags().StringVar(&filePath, "file", "", "Weld log CSV path (required)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
