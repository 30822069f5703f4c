package identity

import (
	"context"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/frame"
)

func (f *Flow) reasonFrame() *frame.Definition {
	return frame.New(FrameReason).
		Root().
		Enter(frame.Command(CommandStart), StateSelectingReason, f.start).
		Child(StateSelectingReason, FrameAction).
		On(StateSelectingReason, frame.Selection(Emergency), f.emergency).
		On(StateSelectingReason, frame.Selection(End), f.exit).
		Fallback(frame.Command(CommandStop), f.stop(domain.SignalEnd)).
		Resume(domain.SignalEnd, frame.Finish()).
		Emits(domain.SignalEnd).
		Build()
}

func (f *Flow) start(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(
		domain.Render{Mode: domain.ModeNew, Text: f.content.Texts.Greeting},
		f.reasonMenu(domain.ModeNew),
	)
	return frame.Stay(), nil
}

func (f *Flow) emergency(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(domain.Render{Mode: domain.ModeReplace, Text: f.content.Texts.Emergency})
	return frame.Emit(domain.SignalEnd), nil
}

func (f *Flow) exit(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	t.Send(f.goodbye(domain.ModeReplace))
	return frame.Emit(domain.SignalEnd), nil
}

// stop ends the conversation from any depth: the top frame emits END, nested frames STOPPING.
func (f *Flow) stop(sig domain.Signal) frame.Handler {
	return func(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
		t.Send(f.goodbye(domain.ModeNew))
		return frame.Emit(sig), nil
	}
}
