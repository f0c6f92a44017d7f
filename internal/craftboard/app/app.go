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

	httpapi "github.com/craftboard/craftboard/internal/craftboard/http"
	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/craftboard/craftboard/internal/craftboard/store/drivers/memory"
	"github.com/craftboard/craftboard/internal/craftboard/store/drivers/redis"
	"github.com/craftboard/craftboard/pkg/jwtx"
	"github.com/craftboard/craftboard/pkg/mcauth"
	"github.com/craftboard/craftboard/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the craftboard service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	verifier jwtx.Verifier

	// Services
	linkService    *service.LinkService
	catalogService *service.CatalogService
	authClient     *mcauth.Client

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "craftboard",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initVerifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("craftboard starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down craftboard...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
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

	app.logger.Info("craftboard stopped")
	return nil
}

// initStore initializes the configured store driver
func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "memory":
		// Volatile, for development and tests only
		app.db = memory.NewStore()
		app.logger.Warn("using in-memory store, all data is lost on restart")
	case "redis":
		db, err := redis.Open(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.db = db
		app.logger.Info("connected to redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
	return nil
}

// initVerifier loads the web auth service's public key so this service can
// verify its session tokens without sharing any secret
func (app *Application) initVerifier() error {
	if app.cfg.JWTPublicKeyFile == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_FILE is required")
	}

	pemKey, err := os.ReadFile(app.cfg.JWTPublicKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read JWT public key: %w", err)
	}

	verifier, err := jwtx.NewEdDSAVerifier(pemKey, app.cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT verifier: %w", err)
	}
	app.verifier = verifier
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.linkService = &service.LinkService{
		Store:   app.db,
		CodeTTL: app.cfg.LinkCodeTTL,
	}
	app.catalogService = &service.CatalogService{
		Store:        app.db,
		VoteCooldown: app.cfg.VoteCooldown,
	}
	app.authClient = mcauth.NewClient(mcauth.Config{
		ClientID:     app.cfg.AzureClientID,
		ClientSecret: app.cfg.AzureClientSecret,
		RedirectURI:  app.cfg.PublicBaseURL + "/v1/auth/minecraft/callback",
	})
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.cfg.FrontendBaseURL,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.LinkService = app.linkService
	router.CatalogService = app.catalogService
	router.AuthClient = app.authClient
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
