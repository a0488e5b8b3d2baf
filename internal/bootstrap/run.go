package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/imblue/mep-ui-gateway/config"
)

// RunConfig groups everything the run loop needs.
type RunConfig struct {
	Config   *config.AppConfig
	Services *Services
	Logger   *slog.Logger
}

// Run serves HTTP until a termination signal arrives or the server fails,
// then shuts down gracefully.
func Run(ctx context.Context, cfg *RunConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server, err := BuildHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(signalCtx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown requested")
		//nolint:contextcheck // the parent ctx outlives the canceled group ctx for shutdown.
		return ShutdownHTTPServer(ctx, server, logger)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Services != nil && cfg.Services.Metrics != nil {
		if closeErr := cfg.Services.Metrics.Close(); closeErr != nil {
			logger.Warn("close metrics client failed", "error", closeErr)
		}
	}

	return nil
}
