package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	mocksauth "github.com/imblue/mep-ui-gateway/internal/mocks/auth"
	"github.com/imblue/mep-ui-gateway/internal/service"
)

func newSessionService(t *testing.T, sessions ...domainauth.Session) *service.AuthService {
	t.Helper()
	store := mocksauth.NewMemorySessionStore()
	for _, s := range sessions {
		require.NoError(t, store.Save(context.Background(), s))
	}
	return service.NewAuthService(service.AuthServiceOptions{
		Provider: mocksauth.NewMockAuthProvider(),
		Sessions: store,
		Roles:    mocksauth.StaticRoleExtractor{},
	})
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestResolveSession_NoCookieRedirectsToLogin(t *testing.T) {
	next, called := okHandler()
	mw := ResolveSession(newSessionService(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/pages/dashboard", nil)
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Fpages%2Fdashboard", rec.Header().Get("Location"))
}

func TestResolveSession_UnknownSessionRedirectsToLogin(t *testing.T) {
	next, called := okHandler()
	mw := ResolveSession(newSessionService(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/pages/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "nope"})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestResolveSession_ExpiredSessionRedirectsToLogin(t *testing.T) {
	svc := newSessionService(t, domainauth.Session{
		ID:        "stale",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	next, called := okHandler()

	req := httptest.NewRequest(http.MethodGet, "/pages/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale"})
	rec := httptest.NewRecorder()
	ResolveSession(svc, slog.Default())(next).ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestResolveSession_ValidSessionReachesHandler(t *testing.T) {
	svc := newSessionService(t, domainauth.Session{
		ID:        "good",
		UserID:    "u1",
		Roles:     domainauth.NewRoleSet([]string{"admin"}),
		ExpiresAt: time.Now().Add(time.Hour),
	})

	var seen *domainauth.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/pages/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "good"})
	rec := httptest.NewRecorder()
	ResolveSession(svc, slog.Default())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/pages/dashboard", "/pages/dashboard"},
		{"/pages/dashboard?tab=1", "/pages/dashboard?tab=1"},
		{"https://evil.example/", "/"},
		{"//evil.example/path", "/"},
		{"relative", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.in), "input %q", tt.in)
	}
}
