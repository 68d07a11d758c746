package progress

import (
	"embed"

	"github.com/clachance14/pipetrak/modules/progress/infrastructure/persistence"
	"github.com/clachance14/pipetrak/modules/progress/presentation/controllers"
	"github.com/clachance14/pipetrak/modules/progress/services"
	"github.com/clachance14/pipetrak/pkg/application"
)

//go:embed infrastructure/persistence/schema/progress-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	configs := persistence.NewConfigRepository()
	app.RegisterServices(
		services.NewProgressService(
			persistence.NewComponentRepository(),
			configs,
			persistence.NewAuditRepository(),
			app.EventPublisher(),
		),
		services.NewConfigService(configs),
	)

	app.RegisterControllers(
		controllers.NewProgressAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "progress"
}
