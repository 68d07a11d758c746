package server

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/configuration"
	"github.com/clachance14/pipetrak/pkg/constants"
	"github.com/clachance14/pipetrak/pkg/httpapi"
	"github.com/clachance14/pipetrak/pkg/middleware"
	"github.com/clachance14/pipetrak/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the HTTP server with the standard middleware stack:
// request logging, the shared pool in context, and tenant/user resolution
// from upstream headers.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.TenantFromHeader(),
	)

	return server.NewHTTPServer(
		app,
		notFoundHandler(),
		methodNotAllowedHandler(),
	), nil
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
}
