package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	"github.com/imblue/mep-ui-gateway/internal/observability/statsd"
	"github.com/imblue/mep-ui-gateway/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleExtractor
	Audit    ports.AuditLog
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// AuthService orchestrates authentication flows by coordinating the identity
// provider, role extraction, and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleExtractor
	audit    ports.AuditLog
	metrics  statsd.Sink
	logger   *slog.Logger
}

var errSessionExpired = errors.New("session expired")

// IsSessionExpired reports whether err means the session existed but
// had passed its expiry.
func IsSessionExpired(err error) bool {
	return errors.Is(err, errSessionExpired)
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		audit:    opts.Audit,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for an
// identity, deriving roles from the identity's claims, and persisting a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		s.recordAudit(ctx, ports.AuditEvent{
			Kind:   ports.AuditLoginFailed,
			Detail: err.Error(),
		})
		s.count("auth.login_failed")
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	// An identity with no recognized roles is still a valid session; the
	// access matrix decides what such a user may reach.
	roles := s.roles.Extract(identity.Claims)

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		Name:      identity.Name,
		Email:     identity.Email,
		Roles:     roles,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.recordAudit(ctx, ports.AuditEvent{
		Kind:   ports.AuditLogin,
		UserID: session.UserID,
		Roles:  roles.Strings(),
	})
	s.count("auth.login")

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID, evicting it if already expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes a session. A blank or unknown session ID is not an error;
// logout must always leave the caller signed out.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	userID := ""
	if session, err := s.sessions.Get(ctx, sessionID); err == nil {
		userID = session.UserID
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.recordAudit(ctx, ports.AuditEvent{
		Kind:   ports.AuditLogout,
		UserID: userID,
	})
	s.count("auth.logout")

	return nil
}

// ProviderLogoutURL returns the identity provider's end-session URL for
// terminating the upstream session after local logout.
func (s *AuthService) ProviderLogoutURL(returnTo string) string {
	return s.provider.LogoutURL(returnTo)
}

// recordAudit writes an audit event, downgrading failures to a warning so
// auth flows never fail on audit trouble.
func (s *AuthService) recordAudit(ctx context.Context, event ports.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit record failed", "kind", event.Kind, "error", err)
	}
}

func (s *AuthService) count(metric string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(metric, 1, nil)
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	return uuid.New().String()
}
