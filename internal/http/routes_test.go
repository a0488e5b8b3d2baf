package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	mocksauth "github.com/imblue/mep-ui-gateway/internal/mocks/auth"
	"github.com/imblue/mep-ui-gateway/internal/ports"
	"github.com/imblue/mep-ui-gateway/internal/service"
)

// gatewayFixture wires the full router with in-memory collaborators: real
// services, mock provider, memory session store.
type gatewayFixture struct {
	handler http.Handler
	store   *mocksauth.MemorySessionStore
	audit   *mocksauth.RecordingAuditLog
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	renderer, err := NewTemplateRenderer(slog.Default())
	require.NoError(t, err)

	store := mocksauth.NewMemorySessionStore()
	audit := &mocksauth.RecordingAuditLog{}

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider: mocksauth.NewMockAuthProvider(),
		Sessions: store,
		Roles:    mocksauth.StaticRoleExtractor{Roles: domainauth.RoleSet{domainauth.RoleUser}},
		Audit:    audit,
	})
	// Dashboard is deliberately unlisted: any authenticated session may view it.
	accessSvc := service.NewAccessService(service.AccessServiceOptions{
		Matrix: access.NewMatrixFromStrings(map[string][]string{
			"/pages/container-upload": {"admin", "provider"},
			"/pages/dicom-upload":     {"admin", "user"},
		}),
		NavLinks: []access.NavLink{
			{Href: "/pages/container-upload", Label: "KI-Image Upload", RequiredRoles: domainauth.NewRoleSet([]string{"admin", "provider"})},
			{Href: "/pages/dicom-upload", Label: "DICOM Upload", RequiredRoles: domainauth.NewRoleSet([]string{"admin", "user"})},
			{Href: "https://idp.example/account", Label: "Profil bearbeiten"},
		},
		Audit: audit,
	})

	handler := NewRouter(RouterServices{
		Auth:     authSvc,
		Access:   accessSvc,
		Renderer: renderer,
		IsPublicPath: func(path string) bool {
			return path == "/" || path == "/index" ||
				strings.HasPrefix(path, "/auth/") || path == "/healthz"
		},
		BaseURL:  "http://localhost:8080",
		EntryURL: "/",
		Logger:   slog.Default(),
	})

	return &gatewayFixture{handler: handler, store: store, audit: audit}
}

func (f *gatewayFixture) addSession(t *testing.T, id string, roles ...string) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), domainauth.Session{
		ID:        id,
		UserID:    "user-" + id,
		Name:      "Test User",
		Roles:     domainauth.NewRoleSet(roles),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func (f *gatewayFixture) get(path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestGateway_LandingPageIsPublic(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.get("/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Anmelden")
}

func TestGateway_Healthz(t *testing.T) {
	f := newGatewayFixture(t)

	assert.Equal(t, http.StatusOK, f.get("/healthz", "").Code)
}

// Scenario: roles {user} on a page allowing {admin, provider}. The denial is
// explicit and the forced logout returns to the public entry page.
func TestGateway_DeniedPageForcesLogout(t *testing.T) {
	f := newGatewayFixture(t)
	f.addSession(t, "s1", "user")

	rec := f.get("/pages/container-upload", "s1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Zugriff verweigert")
	assert.Contains(t, body, "mock-idp/logout")
	assert.Contains(t, body, "localhost%3A8080")

	// Session terminated immediately.
	assert.Equal(t, 0, f.store.Len())

	// Denial and logout both audited.
	kinds := make([]ports.AuditKind, 0, 2)
	for _, e := range f.audit.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, ports.AuditAccessDenied)
	assert.Contains(t, kinds, ports.AuditLogout)
}

// Scenario: roles {admin}, path without a matrix entry. The page loads and
// navigation shows every admin link plus the roleless profile link.
func TestGateway_AdminOnUnlistedPage(t *testing.T) {
	f := newGatewayFixture(t)
	f.addSession(t, "s1", "admin")

	rec := f.get("/pages/dashboard", "s1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")

	nav := f.get("/nav", "s1")
	assert.Equal(t, http.StatusOK, nav.Code)
	body := nav.Body.String()
	assert.Contains(t, body, "KI-Image Upload")
	assert.Contains(t, body, "DICOM Upload")
	assert.Contains(t, body, "Profil bearbeiten")
}

// Scenario: roles {provider} on a page allowing {admin, provider}: no denial.
func TestGateway_ProviderAllowed(t *testing.T) {
	f := newGatewayFixture(t)
	f.addSession(t, "s1", "provider")

	rec := f.get("/pages/container-upload", "s1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Zugriff verweigert")
	assert.Equal(t, 1, f.store.Len())
}

// Scenario: no resolvable session: redirect to login, never the page.
func TestGateway_UnauthenticatedRedirectsToLogin(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.get("/pages/dashboard", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Fpages%2Fdashboard", rec.Header().Get("Location"))
}

func TestGateway_NavVisibilityPerRole(t *testing.T) {
	f := newGatewayFixture(t)
	f.addSession(t, "user-sess", "user")
	f.addSession(t, "provider-sess", "provider")

	userNav := f.get("/nav", "user-sess").Body.String()
	assert.NotContains(t, userNav, "KI-Image Upload")
	assert.Contains(t, userNav, "DICOM Upload")
	assert.Contains(t, userNav, "Profil bearbeiten")

	providerNav := f.get("/nav", "provider-sess").Body.String()
	assert.Contains(t, providerNav, "KI-Image Upload")
	assert.NotContains(t, providerNav, "DICOM Upload")
}

// Re-rendering with unchanged roles yields an identical fragment.
func TestGateway_NavRenderingIsIdempotent(t *testing.T) {
	f := newGatewayFixture(t)
	f.addSession(t, "s1", "admin")

	first := f.get("/nav", "s1").Body.String()
	second := f.get("/nav", "s1").Body.String()

	assert.Equal(t, first, second)
}
