package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoActiveConversation is returned when an event arrives for a party with an
// empty stack and the event is not a root entry point.
var ErrNoActiveConversation = errors.New("no active conversation")

// ErrUnclassifiableEvent is returned when an update carries nothing the engine understands.
var ErrUnclassifiableEvent = errors.New("unclassifiable event")

// ErrUnknownFrame is returned when a session references a frame that is not part of the set.
var ErrUnknownFrame = errors.New("unknown frame")

// ValidationError reports an answer that does not fit the field it was given for.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

// UnmappedSignalError is returned when a frame terminates with a signal its
// parent has no resume target for.
type UnmappedSignalError struct {
	Frame  string
	Signal Signal
}

func (e *UnmappedSignalError) Error() string {
	return fmt.Sprintf("frame %q emits unmapped terminal signal %q", e.Frame, e.Signal)
}
