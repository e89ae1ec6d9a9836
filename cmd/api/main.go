// Cattery serves the cats API and the static site next to it.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jdholdren/cattery/internal/app"
	"github.com/jdholdren/cattery/internal/cats"
	"github.com/jdholdren/cattery/internal/logger"
	"github.com/jdholdren/cattery/internal/server"
	"github.com/jdholdren/cattery/internal/sqlite"
)

type config struct {
	Port     int    `env:"PORT, default=3000"`
	Database string `env:"DATABASE, default=cattery.db"`

	// Overrides the public directory next to the executable
	StaticRoot string `env:"STATIC_ROOT"`
	CorsOrigin string `env:"CORS_ORIGIN"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
	LogLevel     string `env:"LOG_LEVEL, default=info"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("error parsing log level: %s", err)
	}
	l := logger.New(os.Stderr, cfg.LoggerFormat, level)
	slog.SetDefault(l)

	// Connect to the sqlite db, running all migrations
	dbx, err := sqlite.Open(ctx, sqlite.DSN(cfg.Database))
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	repo := sqlite.New(dbx)

	// Start the application
	fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: l}
		}),
		fx.Supply(
			server.Config{
				Port:       cfg.Port,
				CorsOrigin: cfg.CorsOrigin,
			},
			fx.Annotate(repo, fx.As(new(cats.Store))),
		),
		app.Module(app.Config{StaticRoot: cfg.StaticRoot}),
		fx.Provide(server.New),
		fx.Invoke(func(server.Server) {}), // Start the server
	).Run()
}
