package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RoleMatrix maps a page path to the roles permitted to view it.
// Paths not present in the matrix carry no restriction beyond authentication.
type RoleMatrix map[string][]string

// UnmarshalText implements encoding.TextUnmarshaler so the matrix can be
// supplied as a JSON object in a single environment variable.
func (m *RoleMatrix) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*m = RoleMatrix{}
		return nil
	}
	var parsed map[string][]string
	if err := json.Unmarshal(text, &parsed); err != nil {
		return fmt.Errorf("invalid access matrix JSON: %w", err)
	}
	*m = parsed
	return nil
}

// NavLinkEntry is one ordered navigation candidate.
// An empty Roles list means the link is visible to every authenticated user.
type NavLinkEntry struct {
	Href  string   `json:"href"`
	Label string   `json:"label"`
	Roles []string `json:"roles,omitempty"`
}

// NavLinkList is an ordered set of navigation candidates, supplied as a
// JSON array in a single environment variable.
type NavLinkList []NavLinkEntry

// UnmarshalText implements encoding.TextUnmarshaler for NavLinkList.
func (l *NavLinkList) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*l = nil
		return nil
	}
	var parsed []NavLinkEntry
	if err := json.Unmarshal(text, &parsed); err != nil {
		return fmt.Errorf("invalid nav links JSON: %w", err)
	}
	*l = parsed
	return nil
}

// AccessConfig groups the access matrix, navigation candidates, and the
// set of public paths that skip session resolution.
//
// The matrix is deliberately configuration rather than code: the
// authoritative page-to-role mapping belongs to the integrator. The
// defaults mirror the shipped imblue page set.
type AccessConfig struct {
	// Matrix maps page paths to allowed roles.
	Matrix RoleMatrix `env:"ACCESS_MATRIX" envDefault:"{\"/pages/dashboard\":[\"admin\",\"provider\"],\"/pages/container-upload\":[\"admin\",\"provider\"],\"/pages/dicom-upload\":[\"admin\",\"user\"]}"`

	// NavLinks is the ordered navigation candidate list. The universal
	// profile link is appended at bootstrap once the provider account URL
	// is known.
	NavLinks NavLinkList `env:"NAV_LINKS" envDefault:"[{\"href\":\"/pages/dashboard\",\"label\":\"Dashboard\",\"roles\":[\"admin\",\"provider\"]},{\"href\":\"/pages/container-upload\",\"label\":\"Upload container\",\"roles\":[\"admin\",\"provider\"]},{\"href\":\"/pages/dicom-upload\",\"label\":\"Upload DICOM\",\"roles\":[\"admin\",\"user\"]}]"`

	// PublicPaths are path prefixes served without a session (the landing
	// page, the auth endpoints themselves, health, and static assets).
	PublicPaths []string `env:"PUBLIC_PATHS" envDefault:"/auth/;/healthz;/static/" envSeparator:";"`
}

// Sanitize normalizes matrix paths and public path prefixes.
func (c *AccessConfig) Sanitize() {
	cleaned := make(RoleMatrix, len(c.Matrix))
	for path, roles := range c.Matrix {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		cleaned[path] = trimAll(roles)
	}
	c.Matrix = cleaned

	paths := make([]string, 0, len(c.PublicPaths))
	for _, p := range c.PublicPaths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	c.PublicPaths = paths
}

// IsPublicPath reports whether path is served without session resolution.
// The entry page matches exactly; configured prefixes match by prefix.
func (c *AccessConfig) IsPublicPath(path string) bool {
	if path == "/" || path == "/index" {
		return true
	}
	for _, p := range c.PublicPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
