package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/imblue/mep-ui-gateway/internal/errors"
	"github.com/imblue/mep-ui-gateway/internal/ports"
	"github.com/imblue/mep-ui-gateway/internal/testutil"
)

func TestAuditRepo_Record_And_RecentByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepo(db)

	userID := fmt.Sprintf("user-%d", time.Now().UnixNano())

	// record a full event
	err := repo.Record(ctx, ports.AuditEvent{
		Kind:   ports.AuditLogin,
		UserID: userID,
		Path:   "/auth/callback",
		Roles:  []string{"admin", "provider"},
	})
	require.NoError(t, err)

	// record a denial a moment later so ordering is observable
	err = repo.Record(ctx, ports.AuditEvent{
		Kind:       ports.AuditAccessDenied,
		UserID:     userID,
		Path:       "/pages/dicom-upload",
		Roles:      []string{"provider"},
		Detail:     "roles do not permit page",
		OccurredAt: time.Now().Add(time.Second),
	})
	require.NoError(t, err)

	events, err := repo.RecentByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// newest first
	assert.Equal(t, string(ports.AuditAccessDenied), events[0].Kind)
	assert.Equal(t, "/pages/dicom-upload", events[0].Path)
	assert.Equal(t, []string{"provider"}, events[0].Roles)
	assert.Equal(t, "roles do not permit page", events[0].Detail)

	assert.Equal(t, string(ports.AuditLogin), events[1].Kind)
	assert.NotEmpty(t, events[1].ID)
	assert.False(t, events[1].OccurredAt.IsZero())
	assert.Equal(t, []string{"admin", "provider"}, events[1].Roles)
}

func TestAuditRepo_Record_RequiresKind(t *testing.T) {
	repo := NewAuditRepo(nil)

	err := repo.Record(context.Background(), ports.AuditEvent{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuditRepo_Record_NilRolesStoredAsEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepo(db)

	userID := fmt.Sprintf("user-%d", time.Now().UnixNano())

	require.NoError(t, repo.Record(ctx, ports.AuditEvent{
		Kind:   ports.AuditLogout,
		UserID: userID,
	}))

	events, err := repo.RecentByUser(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{}, events[0].Roles)
}

func TestAuditRepo_RecentByUser_Validation(t *testing.T) {
	repo := NewAuditRepo(nil)

	_, err := repo.RecentByUser(context.Background(), "", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuditRepo_RecentByUser_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewAuditRepo(db)

	events, err := repo.RecentByUser(context.Background(), "nobody-here", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
