package service

import (
	"context"
	"log/slog"

	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	"github.com/imblue/mep-ui-gateway/internal/observability/statsd"
	"github.com/imblue/mep-ui-gateway/internal/ports"
)

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Matrix   *access.Matrix
	NavLinks []access.NavLink
	Audit    ports.AuditLog
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// AccessService applies the role-based access matrix to request paths and
// filters navigation links down to what a session's roles may see.
type AccessService struct {
	matrix   *access.Matrix
	navLinks []access.NavLink
	audit    ports.AuditLog
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewAccessService constructs a new AccessService.
func NewAccessService(opts AccessServiceOptions) *AccessService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessService{
		matrix:   opts.Matrix,
		navLinks: opts.NavLinks,
		audit:    opts.Audit,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// Authorize evaluates the access matrix for a path against a session's roles.
// Denials are recorded in the audit log; the decision itself stays pure.
func (s *AccessService) Authorize(ctx context.Context, path string, session *domainauth.Session) access.Decision {
	var roles domainauth.RoleSet
	userID := ""
	if session != nil {
		roles = session.Roles
		userID = session.UserID
	}

	decision := s.matrix.Evaluate(path, roles)
	if decision == access.Allow {
		return decision
	}

	if s.audit != nil {
		event := ports.AuditEvent{
			Kind:   ports.AuditAccessDenied,
			UserID: userID,
			Path:   path,
			Roles:  roles.Strings(),
		}
		if err := s.audit.Record(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "audit record failed", "kind", event.Kind, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.Count("auth.denied", 1, map[string]string{"path": path})
	}
	s.logger.InfoContext(ctx, "access denied",
		slog.String("path", path),
		slog.String("user_id", userID),
		slog.Any("roles", roles.Strings()),
	)

	return decision
}

// RequiredRoles returns the roles allowed for a path, or nil when the path is
// not governed by the matrix.
func (s *AccessService) RequiredRoles(path string) domainauth.RoleSet {
	allowed, ok := s.matrix.Rule(path)
	if !ok {
		return nil
	}
	return allowed
}

// VisibleLinks returns the navigation links a holder of the given roles may see,
// preserving configured order.
func (s *AccessService) VisibleLinks(roles domainauth.RoleSet) []access.NavLink {
	return access.VisibleLinks(s.navLinks, roles)
}
