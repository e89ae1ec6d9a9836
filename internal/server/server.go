// Package server runs the application's HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/fx"

	"github.com/jdholdren/cattery/internal/module"
	"github.com/jdholdren/cattery/internal/serverutil"
)

type (
	// Server is the HTTP portion serving every registered controller.
	Server struct {
		*http.Server
	}

	// Config holds all of the different options for making a
	// server.
	Config struct {
		Port       int
		CorsOrigin string // Left empty, no CORS headers are sent
	}

	Params struct {
		fx.In

		Config      Config
		Controllers []module.Controller `group:"controllers"`
		Pipeline    module.Pipeline     `optional:"true"`

		// Serves whatever no controller route matched.
		NotFound http.Handler `name:"notfound" optional:"true"`
	}
)

// New builds the server and hooks it into the application lifecycle.
func New(lc fx.Lifecycle, p Params) Server {
	srvr := Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", p.Config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler:      Handler(p),
		},
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srvr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("error listening", "error", err)
				}
			}()

			slog.Info("started server", "port", p.Config.Port)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srvr.Shutdown(ctx)
		},
	})

	return srvr
}

// Handler builds the full handler chain:
// recovery, CORS, access log, slash trimming, bound middleware and then the router.
func Handler(p Params) http.Handler {
	r := serverutil.ErrRouter{Router: mux.NewRouter()}
	for _, c := range p.Controllers {
		c.Register(r)
	}

	r.NotFoundHandler = serverutil.NotFound
	if p.NotFound != nil {
		r.NotFoundHandler = p.NotFound
	}
	r.MethodNotAllowedHandler = serverutil.MethodNotAllowed

	h := p.Pipeline.Wrap(r)
	h = serverutil.NonStrictSlash(h)
	h = serverutil.AccessLogMiddleware(h)
	if p.Config.CorsOrigin != "" {
		h = handlers.CORS(
			handlers.AllowedOrigins([]string{p.Config.CorsOrigin}),
			handlers.AllowCredentials(),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"content-type"}),
		)(h)
	}

	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(h)
}

// Routes panics recovered by gorilla/handlers into slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	slog.Error("recovered from panic", "error", fmt.Sprint(v...))
}
