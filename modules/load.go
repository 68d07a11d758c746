package modules

import (
	"github.com/clachance14/pipetrak/modules/importer"
	"github.com/clachance14/pipetrak/modules/progress"
	"github.com/clachance14/pipetrak/modules/reporting"
	"github.com/clachance14/pipetrak/pkg/application"
)

// BuiltInModules in registration order. The importer schema references
// progress tables, so progress must register first.
var BuiltInModules = []application.Module{
	progress.NewModule(),
	importer.NewModule(),
	reporting.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	return application.Load(app, mods...)
}
