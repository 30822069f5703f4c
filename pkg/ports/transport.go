package ports

import (
	"context"

	"github.com/botarmy/switchboard/pkg/domain"
)

// Transport delivers render instructions to a party.
//
// A render in domain.ModeReplace edits the most recent prompt shown to the
// party; domain.ModeNew sends a fresh message. Transports that cannot edit
// send a new message instead.
type Transport interface {
	Deliver(ctx context.Context, partyID string, r domain.Render) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, partyID string, r domain.Render) error

// Deliver calls f.
func (f TransportFunc) Deliver(ctx context.Context, partyID string, r domain.Render) error {
	return f(ctx, partyID, r)
}
