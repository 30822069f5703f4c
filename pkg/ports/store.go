package ports

import (
	"context"

	"github.com/botarmy/switchboard/pkg/domain"
)

// SessionStore keeps live sessions. Sessions are deleted when their conversation ends.
type SessionStore interface {
	// Save persists the session under its party ID.
	Save(ctx context.Context, partyID string, s *domain.Session) error

	// Load retrieves a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, partyID string) (*domain.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, partyID string) error

	// List returns the party IDs of every live session.
	List(ctx context.Context) ([]string, error)
}
