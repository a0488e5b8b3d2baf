package httpx

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// NewTemplateRenderer constructs a renderer from the embedded template set.
func NewTemplateRenderer(logger *slog.Logger) (*TemplateRenderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return NewTemplateRendererFromFS(sub, logger)
}

// NewTemplateRendererFromFS constructs a renderer by parsing templates from fsys.
// Tests use this with an on-disk or fstest filesystem.
func NewTemplateRendererFromFS(fsys fs.FS, logger *slog.Logger) (*TemplateRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	renderer := &TemplateRenderer{logger: logger}

	var t *template.Template
	funcs := template.FuncMap{
		// content dispatches to a page's content template by name so a single
		// layout can wrap every page.
		"content": func(name string, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if err := t.ExecuteTemplate(&buf, name, data); err != nil {
				return "", err
			}
			//nolint:gosec // output of our own trusted templates
			return template.HTML(buf.String()), nil
		},
	}

	t, err := template.New("root").Funcs(funcs).ParseFS(fsys, "*.tmpl")
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err))
		return nil, err
	}
	renderer.t = t
	return renderer, nil
}

// RenderPage renders the shared layout with the page's content template.
func (r *TemplateRenderer) RenderPage(w http.ResponseWriter, data TemplateData) error {
	return r.render(w, http.StatusOK, "layout", data)
}

// RenderStatus renders a named standalone template with an explicit status code.
func (r *TemplateRenderer) RenderStatus(w http.ResponseWriter, code int, name string, data any) error {
	return r.render(w, code, name, data)
}

// RenderFragment renders a named template without the layout at 200 OK.
func (r *TemplateRenderer) RenderFragment(w http.ResponseWriter, name string, data any) error {
	return r.render(w, http.StatusOK, name, data)
}

// render executes into a buffer first so a template failure never leaves a
// half-written response body.
func (r *TemplateRenderer) render(w http.ResponseWriter, code int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
