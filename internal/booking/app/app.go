package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/szalonlabs/booking-api/internal/booking/http"
	"github.com/szalonlabs/booking-api/internal/booking/notify"
	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/internal/booking/store"
	"github.com/szalonlabs/booking-api/internal/booking/store/drivers/sqlite"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the booking service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	mailer   notify.Mailer
	dispatch *notify.Dispatcher

	tokenService       *service.TokenService
	userService        *service.UserService
	appointmentService *service.AppointmentService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "booking-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.dispatch.Start()

	app.logger.Info("booking service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown drains the server, flushes pending notifications and closes the
// database, in that order.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down booking service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.dispatch.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("booking service stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	local, err := time.LoadLocation(app.cfg.LocalTZ)
	if err != nil {
		return fmt.Errorf("invalid BOOKING_LOCAL_TZ %q: %w", app.cfg.LocalTZ, err)
	}

	if app.cfg.SMTPHost != "" {
		app.mailer = notify.NewSMTPMailer(
			app.cfg.SMTPHost, app.cfg.SMTPPort, app.cfg.SMTPFrom,
			app.cfg.SMTPUsername, app.cfg.SMTPPassword,
		)
	} else {
		app.logger.Warn("no SMTP host configured, notifications will be logged and discarded")
		app.mailer = notify.NopMailer{}
	}
	app.dispatch = notify.NewDispatcher(app.mailer, app.logger, 64)

	app.tokenService = &service.TokenService{
		SessionSecret: []byte(app.cfg.SessionSecret),
		ResetSecret:   []byte(app.cfg.ResetSecret),
		Issuer:        app.cfg.Issuer,
		SessionTTL:    app.cfg.SessionTTL,
		ResetTTL:      app.cfg.ResetTTL,
	}

	app.userService = &service.UserService{
		Store:        app.db,
		Tokens:       app.tokenService,
		Mail:         app.dispatch,
		ResetURLBase: app.cfg.ResetURLBase,
	}

	app.appointmentService = &service.AppointmentService{
		Store:        app.db,
		Mail:         app.dispatch,
		Local:        local,
		CancelWindow: app.cfg.CancelWindow,
		NotifyEmail:  app.cfg.NotifyEmail,
	}

	return nil
}

// initHTTP initializes the router and HTTP server.
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.db, app.logger)
	app.router.TokenService = app.tokenService
	app.router.UserService = app.userService
	app.router.AppointmentService = app.appointmentService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
