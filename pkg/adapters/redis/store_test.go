package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	state := domain.NewState(sessionID)
	state.CurrentLevel = "level1"
	require.NoError(t, store.Save(ctx, sessionID, state))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// miniredis expires keys on FastForward only
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned against wall clock time
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID)))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_NoTTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "forever", domain.NewState("forever")))
	mr.FastForward(24 * time.Hour)

	_, err := store.Load(ctx, "forever")
	assert.NoError(t, err)
	assert.Equal(t, redis.DefaultPrefix, store.Prefix())
}

func TestLocker(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "arbor:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("arbor:lock:s1"))

	// A second caller cannot acquire while the lock is held.
	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "s1", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("arbor:lock:s1"))

	unlock2, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_ReleaseIgnoresForeignOwner(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "arbor:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Second)
	require.NoError(t, err)

	// The lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("arbor:lock:s1", "other-owner"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("arbor:lock:s1")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}
