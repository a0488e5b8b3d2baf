package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/imblue/mep-ui-gateway/config"
	httpx "github.com/imblue/mep-ui-gateway/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *Services
	Logger   *slog.Logger
}

// BuildHTTPServer assembles the router and returns an unstarted server;
// the run loop owns serving and shutdown.
func BuildHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	renderer, err := httpx.NewTemplateRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Access:       cfg.Services.Access,
		Renderer:     renderer,
		IsPublicPath: appCfg.Access.IsPublicPath,
		CookieDomain: appCfg.HTTP.CookieDomain,
		BaseURL:      appCfg.HTTP.BaseURL,
		EntryURL:     appCfg.Auth.EntryURL,
		Logger:       logger,
	})

	// Order: Recover -> Logging -> Router
	handler := httpx.Recover(logger)(httpx.Logging(logger)(router))

	server := &http.Server{
		Addr:         appCfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return server, nil
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
