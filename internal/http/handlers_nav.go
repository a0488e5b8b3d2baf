package httpx

import (
	"log/slog"
	"net/http"

	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// NavHandlers serves the role-scoped navigation fragment.
type NavHandlers struct {
	Access   AccessServiceInterface
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

// NavData is the payload for the navigation fragment template.
type NavData struct {
	NavLinks []access.NavLink
}

// Fragment renders the navigation links visible to the current session.
// GET /nav.
//
// The rendered set is a pure function of the session's roles, so repeated
// calls with unchanged roles yield byte-identical fragments. A template
// failure is logged and leaves the region empty; it never affects the
// access-control decision.
func (h *NavHandlers) Fragment(w http.ResponseWriter, r *http.Request) {
	var roles domainauth.RoleSet
	if session := GetSessionFromContext(r.Context()); session != nil {
		roles = session.Roles
	}

	data := NavData{NavLinks: h.Access.VisibleLinks(roles)}
	if err := h.Renderer.RenderFragment(w, "navbar", data); err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "navigation render failed", slog.Any("error", err))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
}
