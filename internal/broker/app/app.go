package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	httpapi "github.com/keybridge-labs/keybridge/internal/broker/http"
	"github.com/keybridge-labs/keybridge/internal/broker/metrics"
	"github.com/keybridge-labs/keybridge/internal/broker/profile"
	"github.com/keybridge-labs/keybridge/internal/broker/provider/devsim"
	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/eventloop"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the broker daemon with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	sim      *devsim.Sim
	broker   *service.Broker
	profiles *profile.Store
	metrics  *metrics.Metrics

	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// A provider startup failure is fatal here: a daemon that cannot reach its
// identity provider must not come up half-alive.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "keybridge-broker",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initProvider(); err != nil {
		return nil, err
	}
	if err := app.initBroker(); err != nil {
		return nil, err
	}
	if err := app.initProfile(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("broker daemon starting",
		"addr", app.server.Addr,
		"version", BuildVersion,
		"app_id", app.cfg.AppID,
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
	app.logger.Info("shutting down broker daemon...")

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

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Shut down the broker, which also closes the provider's store
	if err := app.broker.Shutdown(); err != nil {
		app.logger.Error("error shutting down broker", "error", err)
		return err
	}

	app.logger.Info("broker daemon stopped")
	return nil
}

// initProvider builds the simulated identity provider from configuration
func (app *Application) initProvider() error {
	seeds, err := ParseSeedAccounts(app.cfg.SeedAccounts)
	if err != nil {
		return fmt.Errorf("invalid seed accounts: %w", err)
	}

	approver, err := app.buildApprover()
	if err != nil {
		return err
	}

	var signingKey []byte
	if app.cfg.SigningKeyFile != "" {
		signingKey, err = os.ReadFile(app.cfg.SigningKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read signing key: %w", err)
		}
	}

	app.sim = devsim.New(devsim.Options{
		DSN:              app.databaseDSN(),
		SessionTTL:       app.cfg.SessionTTL,
		CredentialTTL:    app.cfg.CredentialTTL,
		DiscoveryDelay:   app.cfg.DiscoveryDelay,
		SilentDelay:      app.cfg.SilentDelay,
		InteractiveDelay: app.cfg.InteractiveDelay,
		Approver:         approver,
		SigningKeyPEM:    signingKey,
		DefaultAccount:   app.cfg.DefaultAccount,
		Seed:             seeds,
	})

	return nil
}

// initBroker wires the broker service and starts it against the provider
func (app *Application) initBroker() error {
	app.metrics = metrics.New()

	app.broker = &service.Broker{
		Provider: app.sim,
		Accounts: &service.AccountService{
			Provider:         app.sim,
			MatchAllAccounts: app.cfg.MatchAllAccounts,
		},
		Pump:             eventloop.NewLoop(),
		Metrics:          app.metrics,
		Deadline:         app.cfg.OperationDeadline,
		DefaultAuthority: app.cfg.DefaultAuthority,
		DefaultScope:     app.cfg.DefaultScope,
	}

	if err := app.broker.Startup(app.cfg.ClientID, app.cfg.AppID, BuildVersion, app.logger); err != nil {
		return fmt.Errorf("broker startup failed: %w", err)
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sim,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// initProfile sets up the last-account profile store
func (app *Application) initProfile() error {
	path := app.cfg.ProfilePath
	if path == "" {
		var err error
		path, err = profile.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve profile path: %w", err)
		}
	}

	app.profiles = profile.NewStore(path)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.broker,
		app.profiles,
		app.sim,
		BuildVersion,
		app.logger,
	)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              net.JoinHostPort(app.cfg.Host, strconv.Itoa(app.cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) buildApprover() (devsim.Approver, error) {
	switch app.cfg.ApproverMode {
	case "", "auto":
		return devsim.AutoApprover{Delay: app.cfg.ApprovalDelay}, nil
	case "deny":
		return devsim.DenyApprover{}, nil
	default:
		return nil, fmt.Errorf("unknown approver mode %q", app.cfg.ApproverMode)
	}
}

// databaseDSN builds the simulator's sqlite DSN. ":memory:" passes through
// for throwaway daemons; file databases get the busy timeout and WAL mode
// the daemon expects.
func (app *Application) databaseDSN() string {
	if app.cfg.DatabaseFile == ":memory:" {
		return ":memory:"
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
}
