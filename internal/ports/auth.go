package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)

	// LogoutURL builds the provider end-session URL carrying returnTo as the post-logout destination.
	LogoutURL(returnTo string) string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleExtractor derives the application role set from verified token claims.
type RoleExtractor interface {
	Extract(claims map[string]any) domainauth.RoleSet
}

// AuditEvent is one recorded authentication or authorization outcome.
type AuditEvent struct {
	ID         string
	Kind       AuditKind
	UserID     string
	Path       string
	Roles      []string
	Detail     string
	OccurredAt time.Time
}

// AuditKind categorizes audit events.
type AuditKind string

const (
	AuditLogin        AuditKind = "login"
	AuditLoginFailed  AuditKind = "login_failed"
	AuditAccessDenied AuditKind = "access_denied"
	AuditLogout       AuditKind = "logout"
)

// AuditLog records authentication and authorization outcomes.
// Implementations must be best-effort safe: callers treat failures as
// non-fatal and only log them.
type AuditLog interface {
	Record(ctx context.Context, event AuditEvent) error
}
