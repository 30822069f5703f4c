package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/botarmy/switchboard/pkg/adapters/memory"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates IO latency to provoke lost updates if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s slowStore) Save(ctx context.Context, id string, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, id, sess)
}

func handled(s *domain.Session) domain.Result {
	return domain.Result{Handled: true, Ended: !s.Active()}
}

func TestManager_ApplySerializesUpdates(t *testing.T) {
	mgr := NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Apply(ctx, "race", func(_ context.Context, s *domain.Session) (domain.Result, error) {
				if !s.Active() {
					s.Push("reason", "selecting-reason")
				}
				s.Push("marker", "x")
				return handled(s), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, s.Stack, writers+1, "every update must observe the previous one")
}

func TestManager_ApplyStartsIdleSession(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	var seen *domain.Session

	_, err := mgr.Apply(context.Background(), "p1", func(_ context.Context, s *domain.Session) (domain.Result, error) {
		seen = s
		return domain.Result{}, nil
	})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "p1", seen.PartyID)
	assert.False(t, seen.Active())
}

func TestManager_ApplyUnhandledDoesNotPersist(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store)
	ctx := context.Background()

	_, err := mgr.Apply(ctx, "p1", func(_ context.Context, s *domain.Session) (domain.Result, error) {
		s.Push("reason", "selecting-reason")
		return domain.Result{Handled: false}, nil
	})
	require.NoError(t, err)

	_, err = store.Load(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ApplyErrorDoesNotPersist(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := mgr.Apply(ctx, "p1", func(_ context.Context, s *domain.Session) (domain.Result, error) {
		s.Push("reason", "selecting-reason")
		return domain.Result{Handled: true}, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Load(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ApplyDeletesEndedSession(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store)
	ctx := context.Background()

	start := domain.NewSession("p1")
	start.Push("reason", "selecting-reason")
	require.NoError(t, store.Save(ctx, "p1", start))

	res, err := mgr.Apply(ctx, "p1", func(_ context.Context, s *domain.Session) (domain.Result, error) {
		s.Pop()
		return handled(s), nil
	})
	require.NoError(t, err)
	assert.True(t, res.Ended)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_ApplyStampsUpdatedAt(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	_, err := mgr.Apply(context.Background(), "p1", func(_ context.Context, s *domain.Session) (domain.Result, error) {
		s.Push("reason", "selecting-reason")
		return handled(s), nil
	})
	require.NoError(t, err)

	s, err := store.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, fixed, s.UpdatedAt)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("party-%d", i)
		_, _ = mgr.Apply(ctx, id, func(_ context.Context, s *domain.Session) (domain.Result, error) {
			s.Push("reason", "selecting-reason")
			return handled(s), nil
		})
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestManager_UsesDistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(memory.NewStore(), WithLocker(locker))

	_, err := mgr.Apply(context.Background(), "p9", func(_ context.Context, s *domain.Session) (domain.Result, error) {
		return domain.Result{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, locker.locked)
	assert.Equal(t, 1, locker.released)
}
