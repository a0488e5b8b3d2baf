package config

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	// Used for generating absolute post-logout return URLs.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
// A cookie domain that is itself a public suffix (e.g., "com" or
// "github.io") would scope the session cookie across unrelated
// registrable domains; such values are cleared.
func (h *HTTPConfig) Sanitize() {
	h.CookieDomain = strings.TrimPrefix(strings.TrimSpace(h.CookieDomain), ".")
	if h.CookieDomain == "" {
		return
	}
	if suffix, _ := publicsuffix.PublicSuffix(h.CookieDomain); suffix == h.CookieDomain {
		h.CookieDomain = ""
	}
}
