package importer

import (
	"embed"

	importpersistence "github.com/clachance14/pipetrak/modules/importer/infrastructure/persistence"
	"github.com/clachance14/pipetrak/modules/importer/presentation/controllers"
	"github.com/clachance14/pipetrak/modules/importer/services"
	progresspersistence "github.com/clachance14/pipetrak/modules/progress/infrastructure/persistence"
	"github.com/clachance14/pipetrak/pkg/application"
)

//go:embed infrastructure/persistence/schema/importer-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	drawings := importpersistence.NewDrawingRepository()
	welders := importpersistence.NewWelderRepository()
	app.RegisterServices(
		services.NewImportService(
			drawings,
			welders,
			importpersistence.NewWeldRepository(),
			progresspersistence.NewComponentRepository(),
			progresspersistence.NewConfigRepository(),
			app.EventPublisher(),
		),
		services.NewReferenceService(drawings, welders),
	)

	app.RegisterControllers(
		controllers.NewImportAPIController(app),
		controllers.NewReferenceAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "importer"
}
