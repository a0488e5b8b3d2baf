package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents one authorization role claim (e.g., "admin", "provider",
// "user"). Kept in string form for easy persistence and cookies.
type Role string

// Roles the shipped imblue realm issues. The gateway never restricts the
// role vocabulary to these; the matrix and nav links decide what a role
// grants.
const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RoleUser     Role = "user"
)

// RoleSet is the set of roles a session holds. Order is not meaningful.
type RoleSet []Role

// NewRoleSet builds a RoleSet from raw claim strings, dropping empties and
// duplicates.
func NewRoleSet(names []string) RoleSet {
	seen := make(map[Role]struct{}, len(names))
	set := make(RoleSet, 0, len(names))
	for _, n := range names {
		r := Role(n)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one role.
// An empty other set never intersects anything.
func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range other {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the set as plain strings, preserving order.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape. Claims carries
// the verified token claims verbatim so role extraction stays provider
// agnostic.
type Identity struct {
	UserID    string // stable user identifier (sub or preferred_username)
	Name      string
	Email     string
	Claims    map[string]any
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier. Roles is only meaningful for a
// stored session: unauthenticated visitors never get one.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     RoleSet   `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasAnyRole reports whether the session holds at least one of the given roles.
func (s Session) HasAnyRole(roles RoleSet) bool {
	return s.Roles.Intersects(roles)
}
