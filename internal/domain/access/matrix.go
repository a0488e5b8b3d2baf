package access

// Package access implements the page-level access matrix: a static mapping
// from page path to the roles permitted to view it. Paths absent from the
// matrix are unrestricted at this layer; any authenticated session passes.

import (
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// Decision is the outcome of evaluating the matrix for one page load.
type Decision int

const (
	// Allow means the session may remain on the page.
	Allow Decision = iota
	// Deny means the session must be terminated and the user bounced to
	// the public entry page.
	Deny
)

// Rule is one matrix entry: the exact page path and the roles allowed there.
type Rule struct {
	Path         string
	AllowedRoles domainauth.RoleSet
}

// Matrix is the immutable path-to-roles table, built once at startup.
type Matrix struct {
	rules map[string]domainauth.RoleSet
}

// NewMatrix builds a Matrix from rules. Later duplicates of a path replace
// earlier ones.
func NewMatrix(rules []Rule) *Matrix {
	m := &Matrix{rules: make(map[string]domainauth.RoleSet, len(rules))}
	for _, r := range rules {
		if r.Path == "" {
			continue
		}
		m.rules[r.Path] = r.AllowedRoles
	}
	return m
}

// NewMatrixFromStrings builds a Matrix from a plain path-to-role-names map,
// the shape the configuration layer produces.
func NewMatrixFromStrings(table map[string][]string) *Matrix {
	rules := make([]Rule, 0, len(table))
	for path, roles := range table {
		rules = append(rules, Rule{Path: path, AllowedRoles: domainauth.NewRoleSet(roles)})
	}
	return NewMatrix(rules)
}

// Rule returns the matrix entry for path, if any.
func (m *Matrix) Rule(path string) (domainauth.RoleSet, bool) {
	roles, ok := m.rules[path]
	return roles, ok
}

// Evaluate decides whether a session holding roles may view path.
// No entry for path means allow; otherwise allow iff the role sets
// intersect. An empty role set is denied by every listed page.
func (m *Matrix) Evaluate(path string, roles domainauth.RoleSet) Decision {
	allowed, restricted := m.rules[path]
	if !restricted {
		return Allow
	}
	if roles.Intersects(allowed) {
		return Allow
	}
	return Deny
}
