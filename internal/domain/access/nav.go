package access

import (
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// NavLink is one navigation candidate. RequiredRoles lists the roles that
// may see the link; an empty list makes the link universal (visible to
// every authenticated user, e.g., the profile link).
type NavLink struct {
	Href          string
	Label         string
	RequiredRoles domainauth.RoleSet
}

// VisibleLinks returns the links the given role set may see, in candidate
// order. The result is a pure function of roles and candidates: identical
// inputs always yield an identical slice.
func VisibleLinks(candidates []NavLink, roles domainauth.RoleSet) []NavLink {
	visible := make([]NavLink, 0, len(candidates))
	for _, link := range candidates {
		if len(link.RequiredRoles) == 0 || roles.Intersects(link.RequiredRoles) {
			visible = append(visible, link)
		}
	}
	return visible
}
