package identity

import (
	"context"
	"errors"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/fields"
	"github.com/botarmy/switchboard/pkg/frame"
)

func (f *Flow) captureFrame() *frame.Definition {
	return frame.New(FrameCapture).
		Enter(frame.Selection(StartCapture), StateSelectingField, f.beginCapture).
		On(StateSelectingField, frame.SelectionExcept(End, Submit), f.selectField).
		On(StateAwaitingInput, frame.AnyOf(frame.Text(), frame.Contact(), frame.Location()), f.answer).
		On(StateAwaitingChoice, frame.AnyOf(frame.Text(), frame.SelectionExcept(End, Submit)), f.answer).
		Fallback(frame.Selection(End), f.done).
		Fallback(frame.Selection(Submit), f.submit).
		Fallback(frame.Command(CommandStop), f.stop(domain.SignalStopping)).
		Resume(domain.SignalEnd, frame.ResumeAt(StateSelectingAction)).
		Resume(domain.SignalStopping, frame.Propagate(domain.SignalStopping)).
		Emits(domain.SignalEnd, domain.SignalStopping).
		Build()
}

// awaitState is where the frame waits for an answer to field.
func awaitState(field domain.Field) string {
	if field.Kind == domain.FieldChoice {
		return StateAwaitingChoice
	}
	return StateAwaitingInput
}

func (f *Flow) beginCapture(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	s := t.Session
	s.Level = f.content.Bot.Subject
	s.CurrentField = ""
	s.Resuming = false
	s.Record()
	t.Send(f.collector.Menu(s))
	return frame.Stay(), nil
}

func (f *Flow) selectField(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	field, r, err := f.collector.Prompt(t.Session, t.Event.Value, false)
	if errors.Is(err, fields.ErrUnknownField) {
		// A button from an outdated menu; nothing to ask.
		return frame.Stay(), nil
	}
	if err != nil {
		return frame.Stay(), err
	}
	t.Send(r)
	return frame.Goto(awaitState(field)), nil
}

func (f *Flow) answer(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	s := t.Session
	ans, err := f.collector.Record(s, t.Event)
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		r, err := f.collector.Reprompt(s)
		if err != nil {
			return frame.Stay(), err
		}
		t.Send(r)
		return frame.Stay(), nil
	}
	if err != nil {
		return frame.Stay(), err
	}

	if ans.Next != "" {
		next, r, err := f.collector.Prompt(s, ans.Next, true)
		if err != nil {
			return frame.Stay(), err
		}
		t.Send(r)
		return frame.Goto(awaitState(next)), nil
	}

	t.Send(f.collector.Menu(s))
	return frame.Goto(StateSelectingField), nil
}

func (f *Flow) done(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	f.leaveCapture(t.Session)
	t.Send(f.actionMenu(domain.ModeReplace))
	return frame.Emit(domain.SignalEnd), nil
}

func (f *Flow) submit(_ context.Context, t *frame.Turn) (frame.Outcome, error) {
	s := t.Session
	snap, ok := f.leaveCapture(s)
	if !ok {
		t.Send(f.actionMenu(domain.ModeReplace))
		return frame.Emit(domain.SignalEnd), nil
	}

	t.Export(domain.Export{
		ID:          f.newID(),
		PartyID:     s.PartyID,
		Subject:     s.Level,
		SubmittedAt: f.now(),
		Fields:      snap.Flatten(f.collector.Registry().Fields()),
	})
	t.Send(
		domain.Render{Mode: domain.ModeReplace, Text: f.content.Texts.Submitted},
		f.actionMenu(domain.ModeNew),
	)
	return frame.Emit(domain.SignalEnd), nil
}

// leaveCapture finalizes the record and resets the capture cursor.
func (f *Flow) leaveCapture(s *domain.Session) (domain.Record, bool) {
	s.CurrentField = ""
	s.Resuming = false
	return s.Finalize()
}
