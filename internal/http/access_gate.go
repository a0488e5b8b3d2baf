package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// AccessServiceInterface defines the access-control operations the HTTP layer needs.
type AccessServiceInterface interface {
	Authorize(ctx context.Context, path string, session *domainauth.Session) access.Decision
	VisibleLinks(roles domainauth.RoleSet) []access.NavLink
}

// AccessGate enforces the access matrix for protected pages. It runs after
// session resolution and before the page handler, so restricted pages never
// execute on behalf of an unauthorized viewer.
type AccessGate struct {
	Access       AccessServiceInterface
	Auth         AuthServiceInterface
	Renderer     *TemplateRenderer
	CookieDomain string
	// ReturnURL is the absolute public entry page the provider sends the
	// user back to after the forced logout.
	ReturnURL string
	Logger    *slog.Logger
}

// DeniedData is the payload for the denial page.
type DeniedData struct {
	Path      string
	LogoutURL string
}

// Middleware evaluates the matrix for the request path. A denial terminates
// the session immediately and renders a blocking notice that carries the
// provider logout redirect; the user is never silently bounced.
func (g *AccessGate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())

			if g.Access.Authorize(r.Context(), r.URL.Path, session) == access.Allow {
				next.ServeHTTP(w, r)
				return
			}

			g.forceLogout(w, r, session)
		})
	}
}

// forceLogout destroys the session and shows the denial notice. The notice
// meta-refreshes to the provider end-session URL so the upstream session
// dies too, returning the user to the public entry page.
func (g *AccessGate) forceLogout(w http.ResponseWriter, r *http.Request, session *domainauth.Session) {
	if session != nil {
		if err := g.Auth.Logout(r.Context(), session.ID); err != nil {
			g.logger().WarnContext(r.Context(), "forced logout failed",
				slog.String("session_id", session.ID),
				slog.Any("error", err),
			)
		}
	}
	clearCookie(w, r, "session_id", g.CookieDomain)

	data := DeniedData{
		Path:      r.URL.Path,
		LogoutURL: g.Auth.ProviderLogoutURL(g.ReturnURL),
	}
	if err := g.Renderer.RenderStatus(w, http.StatusForbidden, "denied", data); err != nil {
		// Renderer already logged; still deny, just without the page.
		http.Error(w, "Zugriff verweigert", http.StatusForbidden)
	}
}

func (g *AccessGate) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
