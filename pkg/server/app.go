package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RevenueCast/pkg/config"
	xhttp "RevenueCast/pkg/http"
	applogger "RevenueCast/pkg/logger"
)

// LedgerCleaner tidies the history ledger before the server accepts requests.
type LedgerCleaner interface {
	Clean(ctx context.Context) (int, error)
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	ledger     LedgerCleaner
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server, ledger LedgerCleaner) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		ledger:     ledger,
	}
}

// Run starts the application and blocks until ctx is done or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.History.CleanOnStart && a.ledger != nil {
		removed, err := a.ledger.Clean(ctx)
		if err != nil {
			a.log.Warn("history cleanup failed", applogger.Error(err))
		} else {
			a.log.Info("history cleaned", applogger.Int("removed", removed))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("revenue forecast service started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("engine", a.cfg.Model.Engine),
		applogger.String("sink", a.cfg.Sink.Backend),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
