package reporting

import (
	"github.com/clachance14/pipetrak/modules/reporting/infrastructure/persistence"
	"github.com/clachance14/pipetrak/modules/reporting/presentation/controllers"
	"github.com/clachance14/pipetrak/modules/reporting/services"
	"github.com/clachance14/pipetrak/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

// Register wires the reporting services. Reporting reads the tables owned by
// the progress and importer modules, so it registers no schema of its own.
func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewReportService(persistence.NewReportRepository()),
	)

	app.RegisterControllers(
		controllers.NewReportingAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "reporting"
}
