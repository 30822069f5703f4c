package runtime

import (
	"context"
	"fmt"

	"github.com/botarmy/switchboard/pkg/domain"
)

// unwind pops the top frame with sig and translates the signal through each
// popped frame's resume map until a parent resumes or the stack is empty.
// No further event is consumed while cascading.
func (e *Engine) unwind(ctx context.Context, s *domain.Session, sig domain.Signal) error {
	for {
		popped, ok := s.Pop()
		if !ok {
			return nil
		}
		e.logger.Debug("Frame popped", "party_id", s.PartyID, "frame", popped.Frame, "signal", sig, "depth", len(s.Stack))
		if e.hooks.OnFramePop != nil {
			e.hooks.OnFramePop(ctx, &domain.FrameEvent{
				EventBase: e.base(domain.EventFramePop, s),
				Frame:     popped.Frame,
				From:      popped.State,
				Signal:    sig,
				Depth:     len(s.Stack),
			})
		}

		if sig == domain.SignalPop {
			break
		}

		def, ok := e.frames.Frame(popped.Frame)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownFrame, popped.Frame)
		}
		target, ok := def.Target(sig)
		if !ok {
			return &domain.UnmappedSignalError{Frame: popped.Frame, Signal: sig}
		}

		if target.IsFinish() {
			s.Stack = s.Stack[:0]
			break
		}
		if !s.Active() {
			break
		}
		if state, ok := target.IsResume(); ok {
			parent, _ := s.Top()
			parentDef, ok := e.frames.Frame(parent.Frame)
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrUnknownFrame, parent.Frame)
			}
			return e.transition(ctx, s, parentDef, state)
		}
		next, _ := target.IsPropagate()
		sig = next
	}

	if !s.Active() {
		e.logger.Debug("Conversation ended", "party_id", s.PartyID, "signal", sig)
		if e.hooks.OnSessionEnd != nil {
			e.hooks.OnSessionEnd(ctx, &domain.FrameEvent{
				EventBase: e.base(domain.EventSessionEnd, s),
				Signal:    sig,
			})
		}
	}
	return nil
}
