package application_test

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

type fakeModule struct {
	name     string
	err      error
	register func(app application.Application)
}

func (m fakeModule) Name() string { return m.name }

func (m fakeModule) Register(app application.Application) error {
	if m.register != nil {
		m.register(app)
	}
	return m.err
}

func newTestApp() application.Application {
	logger := logrus.New()
	return application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
}

func TestLoad_RegistersInOrder(t *testing.T) {
	app := newTestApp()

	var order []string
	record := func(name string) fakeModule {
		return fakeModule{name: name, register: func(application.Application) {
			order = append(order, name)
		}}
	}

	require.NoError(t, application.Load(app, record("progress"), record("importer"), record("reporting")))
	require.Equal(t, []string{"progress", "importer", "reporting"}, order)
}

func TestLoad_FailsFastNamingModule(t *testing.T) {
	app := newTestApp()

	boom := errors.New("schema conflict")
	var reached bool
	err := application.Load(app,
		fakeModule{name: "importer", err: boom},
		fakeModule{name: "reporting", register: func(application.Application) { reached = true }},
	)

	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "importer")
	require.False(t, reached)
}
