// Package app is the composition root: it declares which modules make up the
// application and which routes the request logger is bound to.
package app

import (
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/jdholdren/cattery/internal/cats"
	"github.com/jdholdren/cattery/internal/middleware"
	"github.com/jdholdren/cattery/internal/module"
	"github.com/jdholdren/cattery/internal/serverutil"
	"github.com/jdholdren/cattery/internal/static"
)

type Config struct {
	// Directory of static assets, "../public" next to the executable when empty.
	StaticRoot string
}

// Root declares the application.
func Root(cfg Config) module.Definition {
	return module.Definition{
		Name: "app",
		Imports: []module.Definition{
			cats.Module,
			static.ForRoot(static.Options{RootPath: staticRoot(cfg)}),
		},
		Controllers: []any{NewController},
		Providers:   []any{NewService},
		Configure: func(c *module.Consumer) {
			c.Apply(middleware.Logger).
				ForRoutes(module.RouteInfo{Path: "cats", Method: http.MethodGet})
		},
	}
}

// Module registers the application with fx.
func Module(cfg Config) fx.Option {
	return module.Build(Root(cfg))
}

func staticRoot(cfg Config) string {
	if cfg.StaticRoot != "" {
		return cfg.StaticRoot
	}

	root, err := static.ResolveRoot("..", "public")
	if err != nil {
		slog.Warn("falling back to ./public for static files", "error", err)
		return "public"
	}

	return root
}

// Service answers the root route.
type Service struct{}

func NewService() Service {
	return Service{}
}

func (Service) Hello() string {
	return "Hello World!"
}

type Controller struct {
	svc Service
}

func NewController(svc Service) Controller {
	return Controller{svc: svc}
}

func (c Controller) Register(r serverutil.ErrRouter) {
	r.HandleFuncE("/", c.getHello).Methods(http.MethodGet, http.MethodHead)
}

func (c Controller) getHello(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(c.svc.Hello()))

	return err
}
