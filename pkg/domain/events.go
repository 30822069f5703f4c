package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventFramePush  EventType = "frame_push"
	EventFramePop   EventType = "frame_pop"
	EventTransition EventType = "transition"
	EventIgnored    EventType = "ignored"
	EventSessionEnd EventType = "session_end"
	EventExported   EventType = "exported"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	PartyID   string    `json:"party_id"`
}

// FrameEvent reports a frame entering or leaving the stack, or changing state.
type FrameEvent struct {
	EventBase
	Frame  string `json:"frame"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Signal Signal `json:"signal,omitempty"`
	Depth  int    `json:"depth"`
}

// InputEvent reports an inbound event that produced no transition.
type InputEvent struct {
	EventBase
	Kind  EventKind `json:"kind"`
	Frame string    `json:"frame,omitempty"`
	State string    `json:"state,omitempty"`
}

// ExportEvent reports a delivered or failed export.
type ExportEvent struct {
	EventBase
	ExportID string `json:"export_id"`
	Fields   int    `json:"fields"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnFramePush  func(context.Context, *FrameEvent)
	OnFramePop   func(context.Context, *FrameEvent)
	OnTransition func(context.Context, *FrameEvent)
	OnIgnored    func(context.Context, *InputEvent)
	OnSessionEnd func(context.Context, *FrameEvent)
	OnExport     func(context.Context, *ExportEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnFramePush:  chain(h.OnFramePush, other.OnFramePush),
		OnFramePop:   chain(h.OnFramePop, other.OnFramePop),
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnIgnored:    chain(h.OnIgnored, other.OnIgnored),
		OnSessionEnd: chain(h.OnSessionEnd, other.OnSessionEnd),
		OnExport:     chain(h.OnExport, other.OnExport),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
