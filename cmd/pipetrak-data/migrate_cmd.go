package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/clachance14/pipetrak/modules"
	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/configuration"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

type migrateOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Status     string `json:"status"`
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema of every registered module",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:     pool,
				EventBus: eventbus.NewEventPublisher(conf.Logger()),
				Logger:   conf.Logger(),
			})
			if err := modules.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}

			start := time.Now()
			if err := app.Migrations().Apply(cmd.Context()); err != nil {
				return err
			}
			return writeJSON(migrateOutput{
				Command:    "migrate",
				DurationMS: time.Since(start).Milliseconds(),
				Status:     "applied",
			})
		},
	}
}
