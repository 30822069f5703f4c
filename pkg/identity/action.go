package identity

import (
	"context"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/frame"
)

func (f *Flow) actionFrame() *frame.Definition {
	return frame.New(FrameAction).
		Enter(frame.Selection(General), StateSelectingAction, f.general).
		Child(StateSelectingAction, FrameCapture).
		On(StateSelectingAction, frame.Selection(Show), f.show).
		On(StateSelectingAction, frame.Selection(End), f.backToReason).
		On(StateShowingSummary, frame.Selection(End), f.backToAction).
		Fallback(frame.Command(CommandStop), f.stop(domain.SignalStopping)).
		Resume(domain.SignalEnd, frame.ResumeAt(StateSelectingReason)).
		Resume(domain.SignalStopping, frame.Propagate(domain.SignalEnd)).
		Emits(domain.SignalEnd, domain.SignalStopping).
		Build()
}

func (f *Flow) general(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(f.actionMenu(domain.ModeReplace))
	return frame.Stay(), nil
}

func (f *Flow) show(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(f.summary(t.Session))
	return frame.Goto(StateShowingSummary), nil
}

func (f *Flow) backToReason(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(f.reasonMenu(domain.ModeReplace))
	return frame.Emit(domain.SignalEnd), nil
}

func (f *Flow) backToAction(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(f.actionMenu(domain.ModeReplace))
	return frame.Goto(StateSelectingAction), nil
}
