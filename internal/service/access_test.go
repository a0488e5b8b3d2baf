package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	mocksauth "github.com/imblue/mep-ui-gateway/internal/mocks/auth"
	"github.com/imblue/mep-ui-gateway/internal/ports"
)

func newTestAccessService(audit ports.AuditLog) *AccessService {
	matrix := access.NewMatrixFromStrings(map[string][]string{
		"/pages/dashboard":        {"admin", "provider"},
		"/pages/container-upload": {"admin", "provider"},
		"/pages/dicom-upload":     {"admin", "user"},
	})
	links := []access.NavLink{
		{Href: "/pages/dashboard", Label: "Dashboard", RequiredRoles: domainauth.NewRoleSet([]string{"admin", "provider"})},
		{Href: "/pages/dicom-upload", Label: "DICOM upload", RequiredRoles: domainauth.NewRoleSet([]string{"admin", "user"})},
		{Href: "/account", Label: "Edit profile"},
	}
	return NewAccessService(AccessServiceOptions{
		Matrix:   matrix,
		NavLinks: links,
		Audit:    audit,
	})
}

func sessionWithRoles(roles ...string) *domainauth.Session {
	return &domainauth.Session{
		ID:     "sess-1",
		UserID: "u1",
		Roles:  domainauth.NewRoleSet(roles),
	}
}

func TestAccessService_Authorize_Allowed(t *testing.T) {
	audit := &mocksauth.RecordingAuditLog{}
	svc := newTestAccessService(audit)

	decision := svc.Authorize(context.Background(), "/pages/dashboard", sessionWithRoles("provider"))

	assert.Equal(t, access.Allow, decision)
	assert.Empty(t, audit.Events())
}

func TestAccessService_Authorize_DeniedIsAudited(t *testing.T) {
	audit := &mocksauth.RecordingAuditLog{}
	svc := newTestAccessService(audit)

	decision := svc.Authorize(context.Background(), "/pages/dashboard", sessionWithRoles("user"))

	assert.Equal(t, access.Deny, decision)
	events := audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ports.AuditAccessDenied, events[0].Kind)
	assert.Equal(t, "u1", events[0].UserID)
	assert.Equal(t, "/pages/dashboard", events[0].Path)
	assert.Equal(t, []string{"user"}, events[0].Roles)
}

func TestAccessService_Authorize_NilSessionDeniedOnListedPath(t *testing.T) {
	svc := newTestAccessService(nil)

	assert.Equal(t, access.Deny, svc.Authorize(context.Background(), "/pages/dicom-upload", nil))
}

func TestAccessService_Authorize_UnlistedPathAllowsAnyone(t *testing.T) {
	svc := newTestAccessService(nil)

	assert.Equal(t, access.Allow, svc.Authorize(context.Background(), "/pages/settings", nil))
	assert.Equal(t, access.Allow, svc.Authorize(context.Background(), "/pages/settings", sessionWithRoles("user")))
}

func TestAccessService_RequiredRoles(t *testing.T) {
	svc := newTestAccessService(nil)

	assert.Equal(t, domainauth.NewRoleSet([]string{"admin", "user"}), svc.RequiredRoles("/pages/dicom-upload"))
	assert.Nil(t, svc.RequiredRoles("/pages/settings"))
}

func TestAccessService_VisibleLinks(t *testing.T) {
	svc := newTestAccessService(nil)

	gotUser := svc.VisibleLinks(domainauth.NewRoleSet([]string{"user"}))
	require.Len(t, gotUser, 2)
	assert.Equal(t, "/pages/dicom-upload", gotUser[0].Href)
	assert.Equal(t, "/account", gotUser[1].Href)

	gotAdmin := svc.VisibleLinks(domainauth.NewRoleSet([]string{"admin"}))
	require.Len(t, gotAdmin, 3)

	gotNone := svc.VisibleLinks(nil)
	require.Len(t, gotNone, 1)
	assert.Equal(t, "Edit profile", gotNone[0].Label)
}
