package frame

import (
	"context"

	"github.com/botarmy/switchboard/pkg/domain"
)

type outcomeKind int

const (
	outcomeStay outcomeKind = iota
	outcomeGoto
	outcomeEmit
)

// Outcome is what a handler asks the engine to do with its frame.
type Outcome struct {
	kind   outcomeKind
	state  string
	signal domain.Signal
}

// Stay keeps the frame in its current state.
func Stay() Outcome { return Outcome{kind: outcomeStay} }

// Goto moves the frame to state.
func Goto(state string) Outcome { return Outcome{kind: outcomeGoto, state: state} }

// Emit terminates the frame with sig.
func Emit(sig domain.Signal) Outcome { return Outcome{kind: outcomeEmit, signal: sig} }

// Terminal reports whether the outcome pops the frame.
func (o Outcome) Terminal() bool { return o.kind == outcomeEmit }

// Moves reports whether the outcome changes state within the frame.
func (o Outcome) Moves() bool { return o.kind == outcomeGoto }

// State is the target of a Goto outcome.
func (o Outcome) State() string { return o.state }

// Signal is the signal of an Emit outcome.
func (o Outcome) Signal() domain.Signal { return o.signal }

// Turn carries one event through the handlers it triggers and collects their output.
type Turn struct {
	Session *domain.Session
	Event   domain.Event

	// Frame and State identify where the running handler was resolved.
	Frame string
	State string

	renders []domain.Render
	exports []domain.Export
}

// NewTurn starts a turn for ev on s.
func NewTurn(s *domain.Session, ev domain.Event) *Turn {
	return &Turn{Session: s, Event: ev}
}

// Send queues renders for delivery, in order.
func (t *Turn) Send(rs ...domain.Render) {
	t.renders = append(t.renders, rs...)
}

// Export queues a finalized record for the export sink.
func (t *Turn) Export(e domain.Export) {
	t.exports = append(t.exports, e)
}

// Renders returns everything sent during the turn.
func (t *Turn) Renders() []domain.Render { return t.renders }

// Exports returns everything exported during the turn.
func (t *Turn) Exports() []domain.Export { return t.exports }

// Handler reacts to an event inside a frame.
type Handler func(ctx context.Context, t *Turn) (Outcome, error)
