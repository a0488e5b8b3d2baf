package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOIDC uses the configured OIDC identity provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, mock)", v)
	}
}

// OIDCConfig identifies the identity provider: server URL, realm, and client.
type OIDCConfig struct {
	// ServerURL is the identity provider base URL (e.g., "http://localhost:8090").
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:8090"`

	// Realm scopes which user pool tokens belong to.
	Realm string `env:"REALM" envDefault:"imblue-realm"`

	ClientID     string `env:"CLIENT_ID"     envDefault:"mep-frontend"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email roles"`
}

// IssuerURL returns the realm issuer URL the provider publishes discovery under.
func (c OIDCConfig) IssuerURL() string {
	return strings.TrimSuffix(c.ServerURL, "/") + "/realms/" + c.Realm
}

// AccountURL returns the provider's account-management console for the realm.
func (c OIDCConfig) AccountURL() string {
	return c.IssuerURL() + "/account"
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-user"`
	Email  string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Roles  []string `env:"ROLES"   envDefault:"admin"           envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RolesClaim is the JMESPath expression that locates the role list
	// inside the verified token claims. Keycloak publishes realm roles
	// under realm_access.roles; other providers differ.
	RolesClaim string `env:"AUTH_ROLES_CLAIM" envDefault:"realm_access.roles"`

	// EntryURL is the public entry page logout returns to.
	EntryURL string `env:"AUTH_ENTRY_URL" envDefault:"/"`
}
