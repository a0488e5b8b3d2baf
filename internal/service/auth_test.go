package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	"github.com/imblue/mep-ui-gateway/internal/mocks"
	mocksauth "github.com/imblue/mep-ui-gateway/internal/mocks/auth"
	"github.com/imblue/mep-ui-gateway/internal/ports"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	saveFunc   func(context.Context, domainauth.Session) error
	getFunc    func(context.Context, string) (domainauth.Session, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, sess)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil {
		opts.Provider = mocksauth.NewMockAuthProvider()
	}
	if opts.Sessions == nil {
		opts.Sessions = mocksauth.NewMemorySessionStore()
	}
	if opts.Roles == nil {
		opts.Roles = mocksauth.StaticRoleExtractor{Roles: domainauth.RoleSet{domainauth.RoleUser}}
	}
	return NewAuthService(opts)
}

func TestAuthService_BeginLogin_Success(t *testing.T) {
	svc := newTestAuthService(AuthServiceOptions{})

	result, err := svc.BeginLogin(context.Background(), "/pages/dashboard")

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)
}

func TestAuthService_BeginLogin_EmptyRedirectURL(t *testing.T) {
	svc := newTestAuthService(AuthServiceOptions{})

	result, err := svc.BeginLogin(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestAuthService_BeginLogin_ProviderError(t *testing.T) {
	provider := &mocksauth.MockAuthProvider{
		BeginFunc: func(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
			return "", "", "", errors.New("provider error")
		},
	}
	svc := newTestAuthService(AuthServiceOptions{Provider: provider})

	result, err := svc.BeginLogin(context.Background(), "/")

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestAuthService_CompleteLogin_Success(t *testing.T) {
	sessions := mocksauth.NewMemorySessionStore()
	audit := &mocksauth.RecordingAuditLog{}
	svc := newTestAuthService(AuthServiceOptions{
		Sessions: sessions,
		Roles:    mocksauth.StaticRoleExtractor{Roles: domainauth.RoleSet{domainauth.RoleAdmin, domainauth.RoleProvider}},
		Audit:    audit,
	})

	result, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "code-1",
		State: "state-1",
		Nonce: "nonce-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.ID)
	assert.Equal(t, "mock-user-1", result.Session.UserID)
	assert.Equal(t, domainauth.RoleSet{domainauth.RoleAdmin, domainauth.RoleProvider}, result.Session.Roles)
	assert.Equal(t, 1, sessions.Len())

	events := audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ports.AuditLogin, events[0].Kind)
	assert.Equal(t, "mock-user-1", events[0].UserID)
	assert.Equal(t, []string{"admin", "provider"}, events[0].Roles)
}

func TestAuthService_CompleteLogin_MissingParams(t *testing.T) {
	svc := newTestAuthService(AuthServiceOptions{})

	tests := []struct {
		name  string
		input CompleteLoginInput
	}{
		{"missing code", CompleteLoginInput{State: "s", Nonce: "n"}},
		{"missing state", CompleteLoginInput{Code: "c", Nonce: "n"}},
		{"missing nonce", CompleteLoginInput{Code: "c", State: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.CompleteLogin(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestAuthService_CompleteLogin_ExchangeFailureIsAudited(t *testing.T) {
	provider := &mocksauth.MockAuthProvider{
		ExchangeFunc: func(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
			return domainauth.Identity{}, errors.New("invalid grant")
		},
	}
	audit := &mocksauth.RecordingAuditLog{}
	svc := newTestAuthService(AuthServiceOptions{Provider: provider, Audit: audit})

	result, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "c", State: "s", Nonce: "n",
	})

	require.Error(t, err)
	assert.Nil(t, result)

	events := audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ports.AuditLoginFailed, events[0].Kind)
	assert.Contains(t, events[0].Detail, "invalid grant")
}

func TestAuthService_CompleteLogin_NoRolesStillCreatesSession(t *testing.T) {
	sessions := mocksauth.NewMemorySessionStore()
	svc := newTestAuthService(AuthServiceOptions{
		Sessions: sessions,
		Roles:    mocksauth.StaticRoleExtractor{},
	})

	result, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "c", State: "s", Nonce: "n",
	})

	require.NoError(t, err)
	assert.Empty(t, result.Session.Roles)
	assert.Equal(t, 1, sessions.Len())
}

func TestAuthService_CompleteLogin_AuditFailureIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditLog(ctrl)
	mockAudit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	svc := newTestAuthService(AuthServiceOptions{Audit: mockAudit})

	result, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "c", State: "s", Nonce: "n",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.ID)
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	sessions := mocksauth.NewMemorySessionStore()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:        "expired-1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	svc := newTestAuthService(AuthServiceOptions{Sessions: sessions})

	session, err := svc.GetSession(context.Background(), "expired-1")

	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))
	assert.Nil(t, session)
	// Expired session is evicted on read.
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_GetSession_StoreError(t *testing.T) {
	store := &mockSessionStore{
		getFunc: func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{}, errors.New("redis down")
		},
	}
	svc := newTestAuthService(AuthServiceOptions{Sessions: store})

	session, err := svc.GetSession(context.Background(), "any")

	require.Error(t, err)
	assert.False(t, IsSessionExpired(err))
	assert.Nil(t, session)
}

func TestAuthService_Logout_RecordsAudit(t *testing.T) {
	sessions := mocksauth.NewMemorySessionStore()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:        "sess-1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	audit := &mocksauth.RecordingAuditLog{}
	svc := newTestAuthService(AuthServiceOptions{Sessions: sessions, Audit: audit})

	require.NoError(t, svc.Logout(context.Background(), "sess-1"))
	assert.Equal(t, 0, sessions.Len())

	events := audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ports.AuditLogout, events[0].Kind)
	assert.Equal(t, "u1", events[0].UserID)
}

func TestAuthService_Logout_EmptySessionID(t *testing.T) {
	audit := &mocksauth.RecordingAuditLog{}
	svc := newTestAuthService(AuthServiceOptions{Audit: audit})

	require.NoError(t, svc.Logout(context.Background(), ""))
	assert.Empty(t, audit.Events())
}

func TestAuthService_ProviderLogoutURL(t *testing.T) {
	svc := newTestAuthService(AuthServiceOptions{})

	got := svc.ProviderLogoutURL("http://localhost:8080/")

	assert.Contains(t, got, "https://mock-idp/logout")
	assert.Contains(t, got, "post_logout_redirect_uri=")
}
