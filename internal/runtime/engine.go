package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/frame"
)

// Engine drives the conversation stack of one session at a time.
// It holds no per-session state, so a single Engine serves every party;
// callers serialize events of the same session.
type Engine struct {
	frames *frame.Set
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over a composed frame set.
func NewEngine(frames *frame.Set, opts ...EngineOption) *Engine {
	e := &Engine{
		frames: frames,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Frames returns the frame set the engine runs.
func (e *Engine) Frames() *frame.Set {
	return e.frames
}

// Handle routes ev to the top frame of s and applies the outcome.
//
// With an empty stack only root entry points are considered; anything else
// yields domain.ErrNoActiveConversation. An event no candidate accepts is
// ignored: the returned Result is not Handled and s is left untouched.
func (e *Engine) Handle(ctx context.Context, s *domain.Session, ev domain.Event) (domain.Result, error) {
	turn := frame.NewTurn(s, ev)

	if !s.Active() {
		for _, root := range e.frames.Roots() {
			if root.Entry.Match(ev) {
				if err := e.enter(ctx, turn, root); err != nil {
					return domain.Result{}, err
				}
				return e.result(turn), nil
			}
		}
		return domain.Result{}, domain.ErrNoActiveConversation
	}

	top, _ := s.Top()
	def, ok := e.frames.Frame(top.Frame)
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownFrame, top.Frame)
	}

	cand, ok := e.frames.Resolve(def, top.State, ev)
	if !ok {
		e.logger.Debug("Event ignored",
			"party_id", s.PartyID,
			"kind", ev.Kind,
			"frame", top.Frame,
			"state", top.State,
		)
		if e.hooks.OnIgnored != nil {
			e.hooks.OnIgnored(ctx, &domain.InputEvent{
				EventBase: e.base(domain.EventIgnored, s),
				Kind:      ev.Kind,
				Frame:     top.Frame,
				State:     top.State,
			})
		}
		return domain.Result{}, nil
	}

	if cand.Child != "" {
		child, _ := e.frames.Frame(cand.Child)
		if err := e.enter(ctx, turn, child); err != nil {
			return domain.Result{}, err
		}
		return e.result(turn), nil
	}

	turn.Frame, turn.State = top.Frame, top.State
	out, err := cand.Handle(ctx, turn)
	if err != nil {
		return domain.Result{}, fmt.Errorf("frame %q state %q: %w", top.Frame, top.State, err)
	}
	if err := e.apply(ctx, turn, def, out); err != nil {
		return domain.Result{}, err
	}
	return e.result(turn), nil
}

// enter pushes def at its entry state and runs its entry handler.
func (e *Engine) enter(ctx context.Context, turn *frame.Turn, def *frame.Definition) error {
	s := turn.Session
	s.Push(def.Name, def.EntryState)
	e.logger.Debug("Frame pushed", "party_id", s.PartyID, "frame", def.Name, "state", def.EntryState, "depth", len(s.Stack))
	if e.hooks.OnFramePush != nil {
		e.hooks.OnFramePush(ctx, &domain.FrameEvent{
			EventBase: e.base(domain.EventFramePush, s),
			Frame:     def.Name,
			To:        def.EntryState,
			Depth:     len(s.Stack),
		})
	}

	if def.OnEntry == nil {
		return nil
	}
	turn.Frame, turn.State = def.Name, def.EntryState
	out, err := def.OnEntry(ctx, turn)
	if err != nil {
		return fmt.Errorf("entering frame %q: %w", def.Name, err)
	}
	return e.apply(ctx, turn, def, out)
}

// apply moves the top frame according to out.
func (e *Engine) apply(ctx context.Context, turn *frame.Turn, def *frame.Definition, out frame.Outcome) error {
	switch {
	case out.Moves():
		return e.transition(ctx, turn.Session, def, out.State())
	case out.Terminal():
		return e.unwind(ctx, turn.Session, out.Signal())
	}
	return nil
}

func (e *Engine) transition(ctx context.Context, s *domain.Session, def *frame.Definition, state string) error {
	if !def.HasState(state) {
		return fmt.Errorf("frame %q has no state %q", def.Name, state)
	}
	top, _ := s.Top()
	s.SetState(state)
	if top.State == state {
		return nil
	}
	e.logger.Debug("Transition", "party_id", s.PartyID, "frame", def.Name, "from", top.State, "to", state)
	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.FrameEvent{
			EventBase: e.base(domain.EventTransition, s),
			Frame:     def.Name,
			From:      top.State,
			To:        state,
			Depth:     len(s.Stack),
		})
	}
	return nil
}

func (e *Engine) base(t domain.EventType, s *domain.Session) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, PartyID: s.PartyID}
}

func (e *Engine) result(turn *frame.Turn) domain.Result {
	return domain.Result{
		Handled: true,
		Ended:   !turn.Session.Active(),
		Renders: turn.Renders(),
		Exports: turn.Exports(),
	}
}
