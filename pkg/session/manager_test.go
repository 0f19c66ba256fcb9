package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, sessionID, state)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, sessionID)
}

// pushOne appends a marker to the history, a read-modify-write that loses updates without locking.
func pushOne(s *domain.State) (*domain.State, error) {
	next := s.Clone()
	next.Push("x")
	return next, nil
}

func TestManager_UpdateIsSerialized(t *testing.T) {
	manager := session.NewManager(&SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Create(ctx, domain.NewState(id)))

	var wg sync.WaitGroup
	concurrentWrites := 10
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, pushOne)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.NavigationStack, concurrentWrites)
}

func TestManager_Create(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, domain.NewState("a")))
	err := manager.Create(ctx, domain.NewState("a"))
	assert.ErrorIs(t, err, session.ErrSessionExists)

	assert.ErrorIs(t, manager.Create(ctx, nil), domain.ErrNilState)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestManager_UpdateErrors(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := manager.Update(ctx, "missing", pushOne)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, manager.Create(ctx, domain.NewState("s")))
	boom := errors.New("boom")
	_, err = manager.Update(ctx, "s", func(s *domain.State) (*domain.State, error) {
		s.Push("should-not-persist")
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, state.NavigationStack)
}

func TestManager_Delete(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "s", domain.NewState("s")))
	require.NoError(t, manager.Delete(ctx, "s"))

	_, err := manager.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	// Two managers stand in for two replicas sharing Redis.
	replicaA := session.NewManager(store, session.WithLocker(redis.NewLocker(client, "test:")), session.WithLockTTL(5*time.Second))
	replicaB := session.NewManager(store, session.WithLocker(redis.NewLocker(client, "test:")))
	ctx := context.Background()

	require.NoError(t, replicaA.Create(ctx, domain.NewState("shared")))

	var wg sync.WaitGroup
	for _, m := range []*session.Manager{replicaA, replicaB, replicaA, replicaB} {
		wg.Add(1)
		go func(m *session.Manager) {
			defer wg.Done()
			_, err := m.Update(ctx, "shared", pushOne)
			assert.NoError(t, err)
		}(m)
	}
	wg.Wait()

	state, err := replicaB.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, state.NavigationStack, 4)
	assert.False(t, mr.Exists("test:lock:shared"))
}
