package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/imblue/mep-ui-gateway/config"
	"github.com/imblue/mep-ui-gateway/internal/adapters/claims"
	"github.com/imblue/mep-ui-gateway/internal/adapters/devauth"
	"github.com/imblue/mep-ui-gateway/internal/adapters/oidc"
	redisadapter "github.com/imblue/mep-ui-gateway/internal/adapters/redis"
	"github.com/imblue/mep-ui-gateway/internal/observability/statsd"
	"github.com/imblue/mep-ui-gateway/internal/ports"
	"github.com/imblue/mep-ui-gateway/internal/service"
	"github.com/redis/go-redis/v9"
)

// AuthDeps contains dependencies for building the auth service.
type AuthDeps struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Audit       ports.AuditLog
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
func BuildAuthService(deps AuthDeps) (*service.AuthService, error) {
	if deps.RedisClient == nil {
		return nil, fmt.Errorf("auth service requires a redis client (mode %q)", deps.Auth.Mode)
	}

	sessionStore := redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:")

	roleExtractor, err := claims.NewJMESPathExtractor(deps.Auth.RolesClaim)
	if err != nil {
		return nil, fmt.Errorf("role claim expression %q: %w", deps.Auth.RolesClaim, err)
	}

	provider, err := buildProvider(deps.Auth, deps.Logger)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessionStore,
		Roles:    roleExtractor,
		Audit:    deps.Audit,
		Metrics:  deps.Metrics,
		Logger:   deps.Logger,
	}), nil
}

//nolint:ireturn // the provider is selected at runtime by auth mode.
func buildProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		if logger != nil {
			logger.Warn("mock auth mode enabled; do not use in production",
				"user_id", cfg.DevAuth.UserID,
				"roles", cfg.DevAuth.Roles,
			)
		}
		provider, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.DevAuth.UserID,
			Email:  cfg.DevAuth.Email,
			Roles:  cfg.DevAuth.Roles,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return provider, nil

	case config.AuthModeOIDC:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			IssuerURL:    cfg.OIDC.IssuerURL(),
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scope:        cfg.OIDC.Scope,
		})
		if err != nil {
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
