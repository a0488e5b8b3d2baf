package httpx

import (
	"log/slog"
	"net/http"
)

// PageHandlers serves the gateway's HTML pages. The protected pages are
// deliberately minimal shells: their page-specific logic lives in the
// backend apps, the gateway only decides who may load them.
type PageHandlers struct {
	Access   AccessServiceInterface
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

// Index renders the public landing page. It is reachable without a session;
// session resolution is skipped entirely for it.
// GET /.
func (h *PageHandlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index" {
		http.NotFound(w, r)
		return
	}
	h.renderPage(w, r, TemplateData{
		Title:           "imblue",
		ContentTemplate: TemplateIndex,
	})
}

// Dashboard renders the dashboard shell.
// GET /pages/dashboard.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderProtected(w, r, "Dashboard", TemplateDashboard)
}

// ContainerUpload renders the KI-image upload shell.
// GET /pages/container-upload.
func (h *PageHandlers) ContainerUpload(w http.ResponseWriter, r *http.Request) {
	h.renderProtected(w, r, "KI-Image Upload", TemplateContainerUpload)
}

// DicomUpload renders the DICOM upload shell.
// GET /pages/dicom-upload.
func (h *PageHandlers) DicomUpload(w http.ResponseWriter, r *http.Request) {
	h.renderProtected(w, r, "DICOM Upload", TemplateDicomUpload)
}

func (h *PageHandlers) renderProtected(w http.ResponseWriter, r *http.Request, title, contentTemplate string) {
	data := TemplateData{
		Title:           title,
		ContentTemplate: contentTemplate,
	}
	if session := GetSessionFromContext(r.Context()); session != nil {
		data.Session = session
		data.NavLinks = h.Access.VisibleLinks(session.Roles)
	}
	h.renderPage(w, r, data)
}

func (h *PageHandlers) renderPage(w http.ResponseWriter, r *http.Request, data TemplateData) {
	if err := h.Renderer.RenderPage(w, data); err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "page render failed",
				slog.String("template", data.ContentTemplate),
				slog.Any("error", err),
			)
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
