package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/botarmy/switchboard/pkg/domain"
)

// Store implements ports.SessionStore in process memory.
// Safe for concurrent use. Sessions are deep-copied in and out.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save stores a copy of the session.
func (s *Store) Save(ctx context.Context, partyID string, session *domain.Session) error {
	cp := session.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[partyID] = cp
	return nil
}

// Load returns a copy so callers cannot mutate the stored session.
func (s *Store) Load(ctx context.Context, partyID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[partyID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, partyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, partyID)
	return nil
}

// List returns the live sessions, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
