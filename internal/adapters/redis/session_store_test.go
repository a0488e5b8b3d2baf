package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
	"github.com/imblue/mep-ui-gateway/internal/testutil"
)

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "test-session-1",
		UserID:    "user-123",
		Name:      "User One",
		Email:     "user@example.com",
		Roles:     domainauth.NewRoleSet([]string{"admin", "user"}),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.Email, retrieved.Email)
	assert.Equal(t, session.Roles, retrieved.Roles)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_GetMissing(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_SaveExpiredRejected(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewSessionStore(client)

	err := store.Save(context.Background(), domainauth.Session{
		ID:        "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestSessionStore_Delete(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{
		ID:        "to-delete",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.Delete(ctx, "to-delete"))

	_, err := store.Get(ctx, "to-delete")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again (or a blank ID) is not an error.
	assert.NoError(t, store.Delete(ctx, "to-delete"))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewSessionStoreWithPrefix(client, "gateway:sess:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{
		ID:        "p1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	exists, err := client.Exists(ctx, "gateway:sess:p1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}
