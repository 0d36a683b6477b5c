package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	httpapi "github.com/aussiebroadwan/readprogress/internal/progress/http"
	"github.com/aussiebroadwan/readprogress/internal/progress/service"
	"github.com/aussiebroadwan/readprogress/internal/progress/session"
	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
	"github.com/aussiebroadwan/readprogress/internal/progress/store/drivers/memory"
	"github.com/aussiebroadwan/readprogress/internal/progress/store/drivers/sqlite"
	"github.com/aussiebroadwan/readprogress/pkg/cryptox"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the progress service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	state *state.Container

	progressService *service.ProgressService
	sessionService  *service.SessionService

	server *http.Server
	router *httpapi.Router
}

// New builds every dependency. It fails if the store can not be opened,
// migrated or seeded.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "progress-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
		}),
	}

	cryptox.SetPepperPath(cfg.Security.PepperFile)

	if err := app.initStore(context.Background()); err != nil {
		return nil, err
	}

	if err := app.initState(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

func (app *Application) initStore(ctx context.Context) error {
	switch app.cfg.Store.Driver {
	case "sqlite":
		db, err := sqlite.NewStore(app.cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open sqlite store %s: %w", app.cfg.Store.Path, err)
		}
		app.db = db
	default:
		app.db = memory.NewStore()
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("apply migrations: %w", err)
	}

	created, err := store.Seed(ctx, app.db.Identities(), app.cfg.Seed)
	if err != nil {
		_ = app.db.Close()
		return fmt.Errorf("seed identities: %w", err)
	}

	total, err := app.db.Identities().Count(ctx)
	if err != nil {
		_ = app.db.Close()
		return fmt.Errorf("count identities: %w", err)
	}

	app.logger.Info("identity store ready",
		"driver", app.cfg.Store.Driver,
		"seeded", created,
		"identities", total,
	)
	return nil
}

func (app *Application) initState() error {
	hash, err := cryptox.HashPassword(app.cfg.Master.Password)
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	app.state = state.NewContainer(&state.Server{
		Identities:         app.db.Identities(),
		Port:               app.cfg.Server.Port,
		MasterLogin:        app.cfg.Master.Login,
		MasterPasswordHash: hash,
	})
	return nil
}

func (app *Application) initServices() {
	app.progressService = &service.ProgressService{}
	app.sessionService = &service.SessionService{State: app.state}
}

func (app *Application) initHTTP() {
	sessions := session.NewManager(session.Config{
		Secret:     []byte(app.cfg.Session.Secret),
		CookieName: app.cfg.Session.CookieName,
		Secure:     app.cfg.Session.Secure,
		MaxAge:     app.cfg.Session.MaxAge,
	})

	app.router = httpapi.NewRouter(BuildVersion, app.db, app.state, sessions, app.logger)
	app.router.ProgressService = app.progressService
	app.router.SessionService = app.sessionService
	app.router.MaxBodyBytes = app.cfg.Server.MaxBodyBytes
	app.router.BodyTimeout = app.cfg.Server.BodyTimeout
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              net.JoinHostPort(app.cfg.Server.Host, strconv.Itoa(app.cfg.Server.Port)),
		Handler:           app.router,
		ReadHeaderTimeout: app.cfg.Server.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelWarn),
	}
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	app.logger.Info("progress service starting", "addr", app.server.Addr, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests for up to the grace period and closes
// the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down progress service")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("progress service stopped")
	return nil
}
