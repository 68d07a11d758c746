package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	importpersistence "github.com/clachance14/pipetrak/modules/importer/infrastructure/persistence"
	"github.com/clachance14/pipetrak/modules/importer/services"
	progresspersistence "github.com/clachance14/pipetrak/modules/progress/infrastructure/persistence"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/configuration"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

type seedConfigOutput struct {
	Command  string `json:"command"`
	ConfigID string `json:"config_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

func newSeedConfigCmd() *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "seed-config",
		Short: "Ensure the stock field weld milestone configuration exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := uuid.Parse(tenantID)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
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

			cfg, err := svc.EnsureWeldConfig(ctx)
			if err != nil {
				return err
			}
			return writeJSON(seedConfigOutput{
				Command:  "seed-config",
				ConfigID: cfg.ID().String(),
				Name:     cfg.Name(),
				Version:  cfg.Version(),
			})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant UUID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
