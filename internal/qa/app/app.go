package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/qaboard/internal/qa/http"
	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/internal/qa/store/drivers/sqlite"
	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application wires the store, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.EdDSASigner
	keys   *jwtx.KeySet

	accountService      *service.AccountService
	sessionService      *service.SessionService
	otpService          *service.OTPService
	inviteService       *service.InviteService
	questionService     *service.QuestionService
	answerService       *service.AnswerService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "qaboard",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, err := initKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer, app.keys = signer, keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("qaboard starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down qaboard...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("qaboard stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initServices() {
	app.accountService = &service.AccountService{Store: app.db}
	app.sessionService = &service.SessionService{
		Signer: app.signer,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}
	app.otpService = &service.OTPService{
		Store:             app.db,
		DefaultTTLMinutes: app.cfg.OTPDefaultTTLMinutes,
	}
	app.inviteService = &service.InviteService{Store: app.db}
	app.questionService = &service.QuestionService{Store: app.db}
	app.answerService = &service.AnswerService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		jwtx.NewVerifierEdDSA(app.keys, app.cfg.Issuer),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.SessionService = app.sessionService
	router.OTPService = app.otpService
	router.InviteService = app.inviteService
	router.QuestionService = app.questionService
	router.AnswerService = app.answerService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
