package httpx

import (
	"log/slog"
	"net/http"
	"strings"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth     AuthServiceInterface
	Access   AccessServiceInterface
	Renderer *TemplateRenderer
	// IsPublicPath reports whether a path skips session resolution entirely
	// (entry page, auth endpoints, health probe).
	IsPublicPath func(string) bool
	CookieDomain string
	// BaseURL is the externally visible origin of the gateway.
	BaseURL string
	// EntryURL is the relative path of the public entry page.
	EntryURL string
	Logger   *slog.Logger
}

// NewRouter creates and configures the gateway's HTTP handler. Every request
// outside the public path set passes through session resolution and the
// access gate before its handler runs.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	returnURL := strings.TrimSuffix(services.BaseURL, "/") + services.EntryURL

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Renderer:     services.Renderer,
		CookieDomain: services.CookieDomain,
		BaseURL:      services.BaseURL,
		ReturnURL:    returnURL,
		Logger:       logger,
	}
	navHandlers := &NavHandlers{
		Access:   services.Access,
		Renderer: services.Renderer,
		Logger:   logger,
	}
	pageHandlers := &PageHandlers{
		Access:   services.Access,
		Renderer: services.Renderer,
		Logger:   logger,
	}
	gate := &AccessGate{
		Access:       services.Access,
		Auth:         services.Auth,
		Renderer:     services.Renderer,
		CookieDomain: services.CookieDomain,
		ReturnURL:    returnURL,
		Logger:       logger,
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	// Public entry page; session resolution is skipped for it.
	mux.HandleFunc("GET /", pageHandlers.Index)
	mux.HandleFunc("GET /index", pageHandlers.Index)

	registerAuthRoutes(mux, authHandlers)

	// Navigation fragment: needs a session, but link visibility never
	// substitutes for enforcement (the gate decides independently).
	mux.HandleFunc("GET /nav", navHandlers.Fragment)

	mux.HandleFunc("GET /pages/dashboard", pageHandlers.Dashboard)
	mux.HandleFunc("GET /pages/container-upload", pageHandlers.ContainerUpload)
	mux.HandleFunc("GET /pages/dicom-upload", pageHandlers.DicomUpload)

	isPublic := services.IsPublicPath
	if isPublic == nil {
		isPublic = func(string) bool { return false }
	}
	return guardRoutes(guardConfig{
		IsPublic: isPublic,
		Resolve:  ResolveSession(services.Auth, logger),
		Enforce:  gate.Middleware(),
	})(mux)
}

// guardConfig groups the pieces of the request guard.
type guardConfig struct {
	IsPublic func(string) bool
	Resolve  func(http.Handler) http.Handler
	Enforce  func(http.Handler) http.Handler
}

// guardRoutes intercepts every request: public paths go straight to their
// handler, everything else resolves a session first and then faces the
// access gate. No path can reach a protected handler without passing both.
func guardRoutes(cfg guardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := cfg.Resolve(cfg.Enforce(next))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.IsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
