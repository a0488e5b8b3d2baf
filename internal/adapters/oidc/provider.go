package oidc

// Package oidc provides the OIDC/OAuth2 authentication adapter for the
// imblue identity provider (a Keycloak-style realm).

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	"github.com/imblue/mep-ui-gateway/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements ports.AuthProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	issuer        string
	endSessionURL string
	oidcProvider  *gooidc.Provider
	verifier      *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	IssuerURL    string // realm issuer, e.g. "http://localhost:8090/realms/imblue-realm"
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// providerClaims is the subset of the discovery document the adapter needs
// beyond what go-oidc exposes directly.
type providerClaims struct {
	EndSessionEndpoint string `json:"end_session_endpoint"`
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(config.IssuerURL, "/")

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	p := &Provider{
		httpClient:   httpClient,
		issuer:       issuer,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}

	var claims providerClaims
	if claimsErr := op.Claims(&claims); claimsErr == nil && claims.EndSessionEndpoint != "" {
		p.endSessionURL = claims.EndSessionEndpoint
	} else {
		// Keycloak publishes the endpoint, but tolerate providers that don't.
		p.endSessionURL = issuer + "/protocol/openid-connect/logout"
	}

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// Begin starts the login flow with cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// Don't override redirect_uri here; it must match the configured
	// RedirectURL exactly or the provider rejects the exchange.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)

	return authURL, state, nonce, nil
}

// Exchange completes the login flow: code-for-token exchange, ID token
// verification, nonce check, and claim decoding into a generic map so role
// extraction stays provider agnostic.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, err := idTokenFromToken(token)
	if err != nil {
		return domainauth.Identity{}, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims map[string]any
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if nonce, _ := claims["nonce"].(string); nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return identityFromClaims(idTok.Subject, claims, expiresAt), nil
}

// LogoutURL builds the provider end-session URL with returnTo as the
// post-logout destination.
func (p *Provider) LogoutURL(returnTo string) string {
	u, err := url.Parse(p.endSessionURL)
	if err != nil {
		return p.endSessionURL
	}
	q := u.Query()
	if returnTo != "" {
		q.Set("post_logout_redirect_uri", returnTo)
		q.Set("client_id", p.config.ClientID)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// identityFromClaims maps verified claims into a domain Identity using
// standard OIDC claim names with Keycloak-friendly fallbacks.
func identityFromClaims(subject string, claims map[string]any, expiresAt time.Time) domainauth.Identity {
	userID := stringClaim(claims, "preferred_username")
	if userID == "" {
		userID = subject
	}
	return domainauth.Identity{
		UserID:    userID,
		Name:      stringClaim(claims, "name"),
		Email:     stringClaim(claims, "email"),
		Claims:    claims,
		ExpiresAt: expiresAt,
	}
}

func stringClaim(claims map[string]any, name string) string {
	v, _ := claims[name].(string)
	return v
}

// idTokenFromToken extracts the raw id_token from the oauth2 token response.
func idTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
