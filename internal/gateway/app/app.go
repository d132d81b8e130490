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

	httpapi "github.com/aussiebroadwan/idgate/internal/gateway/http"
	"github.com/aussiebroadwan/idgate/internal/gateway/service"
	"github.com/aussiebroadwan/idgate/internal/gateway/store"
	"github.com/aussiebroadwan/idgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/idgate/pkg/jwtx"
	"github.com/aussiebroadwan/idgate/pkg/keycloak"
	"github.com/aussiebroadwan/idgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	provider *keycloak.Client
	admin    *keycloak.AdminClient
	keys     *jwtx.KeySet
	verifier jwtx.Verifier

	// Services
	loginService *service.LoginService
	userService  *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router

	stopRefresh context.CancelFunc
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "idgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.provider = keycloak.NewClient(cfg.KeycloakBaseURL, cfg.KeycloakRealm, cfg.ClientID, cfg.ClientSecret)
	app.admin = keycloak.NewAdminClient(app.provider, cfg.AdminRealm)

	app.initVerifier(context.Background())
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Keep the provider's signing keys fresh in the background
	refreshCtx, cancel := context.WithCancel(context.Background())
	app.stopRefresh = cancel
	go app.runKeyRefresher(refreshCtx)

	app.logger.Info("identity gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"realm", app.cfg.KeycloakRealm,
	)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity gateway...")

	if app.stopRefresh != nil {
		app.stopRefresh()
	}

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity gateway stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initVerifier fetches the provider's JWKS and sets up the RS256 verifier.
// A failed initial fetch is tolerated: readyz reports the gateway as not
// ready until the background refresher succeeds.
func (app *Application) initVerifier(ctx context.Context) {
	app.keys = jwtx.NewKeySet()
	app.verifier = jwtx.NewCommonRS256(app.keys, app.provider.IssuerURL(), nil)

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := jwtx.RefreshKeySet(fetchCtx, app.provider.HTTPClient, app.provider.JWKSURL(), app.keys); err != nil {
		app.logger.Warn("initial JWKS fetch failed, will retry in background", "error", err)
		return
	}
	app.logger.Info("provider signing keys loaded", "jwks_url", app.provider.JWKSURL())
}

func (app *Application) runKeyRefresher(ctx context.Context) {
	ticker := time.NewTicker(app.cfg.JWKSRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := jwtx.RefreshKeySet(fetchCtx, app.provider.HTTPClient, app.provider.JWKSURL(), app.keys)
			cancel()
			if err != nil {
				app.logger.Warn("JWKS refresh failed", "error", err)
			}
		}
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.loginService = &service.LoginService{Exchanger: app.provider}
	app.userService = &service.UserService{
		Store:       app.db,
		Provisioner: app.admin,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		app.cfg.DefaultAuthorities,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.LoginService = app.loginService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
