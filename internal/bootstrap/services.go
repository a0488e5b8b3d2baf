package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/imblue/mep-ui-gateway/config"
	"github.com/imblue/mep-ui-gateway/internal/data"
	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	"github.com/imblue/mep-ui-gateway/internal/observability/statsd"
	"github.com/imblue/mep-ui-gateway/internal/ports"
	"github.com/imblue/mep-ui-gateway/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceDeps contains external dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Services is the container of constructed application services.
type Services struct {
	Auth    *service.AuthService
	Access  *service.AccessService
	Audit   ports.AuditLog
	Metrics *statsd.Client
}

// NewServices wires the full service graph from configuration and
// infrastructure handles.
func NewServices(deps *ServiceDeps) (*Services, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "mep_gateway",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}

	audit := buildAuditLog(deps.DB, logger)

	authSvc, err := BuildAuthService(AuthDeps{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Audit:       audit,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	accessSvc := service.NewAccessService(service.AccessServiceOptions{
		Matrix:   access.NewMatrixFromStrings(cfg.Access.Matrix),
		NavLinks: buildNavLinks(cfg),
		Audit:    audit,
		Metrics:  metrics,
		Logger:   logger,
	})

	return &Services{
		Auth:    authSvc,
		Access:  accessSvc,
		Audit:   audit,
		Metrics: metrics,
	}, nil
}

// buildNavLinks converts the configured candidates and appends the universal
// account-management link once the provider account URL is known.
func buildNavLinks(cfg *config.AppConfig) []access.NavLink {
	links := make([]access.NavLink, 0, len(cfg.Access.NavLinks)+1)
	for _, entry := range cfg.Access.NavLinks {
		links = append(links, access.NavLink{
			Href:          entry.Href,
			Label:         entry.Label,
			RequiredRoles: domainauth.NewRoleSet(entry.Roles),
		})
	}
	if cfg.Auth.Mode == config.AuthModeOIDC {
		links = append(links, access.NavLink{
			Href:  cfg.Auth.OIDC.AccountURL(),
			Label: "Profil bearbeiten",
		})
	}
	return links
}

// buildAuditLog prefers the Postgres repository; without a database the
// audit trail degrades to structured logging.
//
//nolint:ireturn // callers only need the port.
func buildAuditLog(db *sql.DB, logger *slog.Logger) ports.AuditLog {
	if db != nil {
		return data.NewAuditRepo(db)
	}
	return logAuditLog{logger: logger}
}

// logAuditLog writes audit events to the application log when no audit
// database is configured.
type logAuditLog struct {
	logger *slog.Logger
}

func (l logAuditLog) Record(ctx context.Context, event ports.AuditEvent) error {
	l.logger.InfoContext(ctx, "audit event",
		slog.String("kind", string(event.Kind)),
		slog.String("user_id", event.UserID),
		slog.String("path", event.Path),
		slog.Any("roles", event.Roles),
		slog.String("detail", event.Detail),
	)
	return nil
}
