package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// ApplyFunc mutates a session and reports what happened.
type ApplyFunc func(ctx context.Context, s *domain.Session) (domain.Result, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to each party's session.
// Locks are reference counted so idle parties leave nothing behind.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release after unlocking.
func (m *Manager) acquire(partyID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[partyID]
	if !ok {
		entry = &lockEntry{}
		m.locks[partyID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(partyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[partyID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, partyID)
	}
}

// Apply loads the party's session (or starts an idle one), runs fn on it and
// persists the outcome, all under the party's lock.
//
// Nothing is written when fn fails or reports the event as unhandled.
// A session whose stack emptied is deleted rather than saved.
func (m *Manager) Apply(ctx context.Context, partyID string, fn ApplyFunc) (domain.Result, error) {
	var res domain.Result
	err := m.WithLock(ctx, partyID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, partyID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			s = domain.NewSession(partyID)
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}

		res, err = fn(ctx, s)
		if err != nil {
			return err
		}
		if !res.Handled {
			return nil
		}

		if !s.Active() {
			if err := m.store.Delete(ctx, partyID); err != nil {
				return fmt.Errorf("failed to delete finished session: %w", err)
			}
			return nil
		}

		s.UpdatedAt = m.now()
		if err := m.store.Save(ctx, partyID, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	return res, err
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, partyID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, partyID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, partyID)
		return err
	})
	return s, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, partyID string) error {
	return m.WithLock(ctx, partyID, func(ctx context.Context) error {
		return m.store.Delete(ctx, partyID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes fn while holding the party's lock.
func (m *Manager) WithLock(ctx context.Context, partyID string, fn func(context.Context) error) error {
	entry := m.acquire(partyID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(partyID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, partyID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"party_id", partyID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
