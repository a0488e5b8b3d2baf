package claims

// Package claims derives the application role set from verified token
// claims. The claim location is a JMESPath expression so the gateway is
// not bound to one provider's token shape: Keycloak publishes realm roles
// under "realm_access.roles", other providers use flat "roles" or "groups".

import (
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// JMESPathExtractor implements ports.RoleExtractor by evaluating a
// JMESPath expression against the claims map.
type JMESPathExtractor struct {
	expr string
}

// NewJMESPathExtractor validates the expression once at construction.
func NewJMESPathExtractor(expr string) (*JMESPathExtractor, error) {
	if expr == "" {
		return nil, fmt.Errorf("roles claim expression is required")
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("compile roles claim expression %q: %w", expr, err)
	}
	return &JMESPathExtractor{expr: expr}, nil
}

// Extract evaluates the expression and coerces the result into a RoleSet.
// Missing or mistyped claims yield the empty set; the caller treats that
// as "no roles", never as an error that could fail open.
func (e *JMESPathExtractor) Extract(claims map[string]any) domainauth.RoleSet {
	if claims == nil {
		return domainauth.RoleSet{}
	}

	result, err := jmespath.Search(e.expr, claims)
	if err != nil {
		return domainauth.RoleSet{}
	}

	switch v := result.(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return domainauth.NewRoleSet(names)
	case []string:
		return domainauth.NewRoleSet(v)
	case string:
		return domainauth.NewRoleSet([]string{v})
	default:
		return domainauth.RoleSet{}
	}
}
