package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "todo_api/docs"
	"todo_api/internal/config"
	"todo_api/internal/handlers"
	"todo_api/internal/logger"
	"todo_api/internal/metrics"
	"todo_api/internal/repository"
	"todo_api/internal/repository/db"
	"todo_api/internal/security/hasher"
	"todo_api/internal/security/token"
	"todo_api/internal/server"
	"todo_api/internal/service"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Get(logger.ErrorLevel).Fatalw("todo-api failed", "err", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "todo-api",
		Usage: "Accounts and per-user todo lists over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default: configs/config.yml)",
				EnvVars: []string{"TODO_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Subcommands: []*cli.Command{
					migrateCommand(db.CommandUp, "Apply all pending migrations"),
					migrateCommand(db.CommandDown, "Roll back the latest migration"),
					migrateCommand(db.CommandStatus, "Print the applied state of every migration"),
				},
			},
		},
	}
}

func migrateCommand(command, usage string) *cli.Command {
	return &cli.Command{
		Name:  command,
		Usage: usage,
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			conn, err := db.Open(c.Context, dbOptions(cfg))
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer func() { _ = conn.Close() }()

			return db.Migrate(c.Context, conn, cfg.DB.Driver, command, log)
		},
	}
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := openDB(c.Context, cfg, log)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close db", "err", cerr)
		}
	}()

	// wire dependencies
	codec, err := token.NewCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	m := metrics.New()
	repos := repository.NewRepository(conn, repository.Options{
		Dialect:      repository.Dialect(cfg.DB.Driver),
		QueryTimeout: cfg.DB.QueryTimeout,
	})
	services := service.NewService(repos, service.Deps{
		Hasher:            hasher.New(cfg.Auth.BcryptCost),
		Tokens:            codec,
		Logger:            log,
		Metrics:           m,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Metrics: m,
		Swagger: cfg.Server.Swagger,
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// expired tokens only exist when tokens expire
	if cfg.Auth.TokenTTL > 0 {
		go services.Sweeper.Run(ctx, cfg.Auth.SweepInterval)
	}

	srv := &server.Server{}
	errc := runHTTPServer(srv, cfg.Server, apiHandler, log)

	return waitForShutdown(cancel, srv, errc, cfg.Server, log)
}

// loadConfig reads the config named by --config and builds the logger it describes.
func loadConfig(c *cli.Context) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

func dbOptions(cfg *config.Config) db.Options {
	return db.Options{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}
}

// openDB connects to the configured store and brings its schema up to date.
func openDB(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening db", "driver", cfg.DB.Driver)
	return db.InitDB(ctx, dbOptions(cfg), log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.ServerConfig, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "port", cfg.Port)
		errc <- srv.Run(cfg, handler.InitRoutes())
	}()
	return errc
}

// waitForShutdown blocks until a termination signal or a server failure,
// then stops background work and drains in-flight requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, errc <-chan error, cfg config.ServerConfig, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errc:
		cancel()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
