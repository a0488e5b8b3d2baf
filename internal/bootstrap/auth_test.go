package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/imblue/mep-ui-gateway/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// A lazily connecting client is enough for construction tests; nothing dials
// until a command runs.
func testRedisClient() redis.UniversalClient {
	return redis.NewClient(&redis.Options{Addr: "localhost:0"})
}

func TestBuildAuthServiceErrorsWithoutRedis(t *testing.T) {
	tests := []struct {
		name string
		auth config.AuthConfig
	}{
		{
			name: "mock auth mode",
			auth: config.AuthConfig{
				Mode: config.AuthModeMock,
				DevAuth: config.DevAuthConfig{
					UserID: "dev",
					Email:  "dev@example.com",
					Roles:  []string{"admin"},
				},
				RolesClaim: "realm_access.roles",
			},
		},
		{
			name: "oidc mode",
			auth: config.AuthConfig{
				Mode: config.AuthModeOIDC,
				OIDC: config.OIDCConfig{
					ServerURL:    "https://login.example.com",
					Realm:        "clinic",
					ClientID:     "client-id",
					ClientSecret: "client-secret",
					RedirectURL:  "https://app.example.com/auth/callback",
					Scope:        "openid",
				},
				RolesClaim: "realm_access.roles",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := BuildAuthService(AuthDeps{
				Auth:        tt.auth,
				RedisClient: nil,
				Logger:      testLogger(),
			})
			if err == nil {
				t.Fatalf("BuildAuthService() = %v, want error without redis", svc)
			}
		})
	}
}

func TestBuildAuthServiceMockMode(t *testing.T) {
	svc, err := BuildAuthService(AuthDeps{
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevAuth: config.DevAuthConfig{
				UserID: "dev",
				Email:  "dev@example.com",
				Roles:  []string{"admin", "provider"},
			},
			RolesClaim: "realm_access.roles",
		},
		RedisClient: testRedisClient(),
		Logger:      testLogger(),
	})
	if err != nil {
		t.Fatalf("BuildAuthService() error = %v", err)
	}
	if svc == nil {
		t.Fatal("BuildAuthService() returned nil service")
	}
}

func TestBuildAuthServiceUnknownMode(t *testing.T) {
	_, err := BuildAuthService(AuthDeps{
		Auth: config.AuthConfig{
			Mode:       config.AuthMode("saml"),
			RolesClaim: "realm_access.roles",
		},
		RedisClient: testRedisClient(),
		Logger:      testLogger(),
	})
	if err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestBuildAuthServiceInvalidRolesClaim(t *testing.T) {
	_, err := BuildAuthService(AuthDeps{
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevAuth: config.DevAuthConfig{
				UserID: "dev",
			},
			RolesClaim: "realm_access.[roles",
		},
		RedisClient: testRedisClient(),
		Logger:      testLogger(),
	})
	if err == nil {
		t.Fatal("expected error for invalid roles claim expression")
	}
}
