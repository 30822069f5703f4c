package frame_test

import (
	"context"
	"errors"
	"testing"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *frame.Turn) (frame.Outcome, error) { return frame.Stay(), nil }

func TestMatchers(t *testing.T) {
	sel := domain.Selection("p", "NAME")
	end := domain.Selection("p", "END")

	tests := []struct {
		name string
		m    frame.Matcher
		ev   domain.Event
		want bool
	}{
		{"command", frame.Command("start"), domain.Command("p", "start"), true},
		{"other command", frame.Command("start"), domain.Command("p", "stop"), false},
		{"selection", frame.Selection("NAME"), sel, true},
		{"selection text", frame.Selection("NAME"), domain.Text("p", "NAME"), false},
		{"except matches", frame.SelectionExcept("END"), sel, true},
		{"except rejects", frame.SelectionExcept("END"), end, false},
		{"except ignores text", frame.SelectionExcept("END"), domain.Text("p", "x"), false},
		{"pattern", frame.SelectionMatching("^N"), sel, true},
		{"text", frame.Text(), domain.Text("p", "hi"), true},
		{"contact", frame.Contact(), domain.SharedContact("p", domain.Contact{Phone: "1"}), true},
		{"location", frame.Location(), domain.SharedLocation("p", domain.Location{}), true},
		{"any of", frame.AnyOf(frame.Text(), frame.Contact()), domain.Text("p", "x"), true},
		{"zero matcher", frame.Matcher{}, sel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Match(tt.ev))
		})
	}
}

func validFrames() []*frame.Definition {
	top := frame.New("top").Root().
		Enter(frame.Command("start"), "idle", noop).
		Child("idle", "inner").
		On("idle", frame.Selection("END"), noop).
		Resume(domain.SignalEnd, frame.Finish()).
		Emits(domain.SignalEnd).
		Build()
	inner := frame.New("inner").
		Enter(frame.Selection("GO"), "busy", noop).
		On("busy", frame.Text(), noop).
		Fallback(frame.Command("stop"), noop).
		Resume(domain.SignalEnd, frame.ResumeAt("idle")).
		Resume(domain.SignalStopping, frame.Propagate(domain.SignalEnd)).
		Emits(domain.SignalEnd, domain.SignalStopping, domain.SignalPop).
		Build()
	return []*frame.Definition{top, inner}
}

func TestCompose_Valid(t *testing.T) {
	set, err := frame.Compose(validFrames()...)
	require.NoError(t, err)

	require.Len(t, set.Roots(), 1)
	assert.Equal(t, "top", set.Roots()[0].Name)
	assert.Len(t, set.Frames(), 2)
}

func TestCompose_UnmappedTerminalSignal(t *testing.T) {
	defs := validFrames()
	defs[1].Emits = append(defs[1].Emits, domain.Signal("ABORT"))

	_, err := frame.Compose(defs...)
	require.Error(t, err)

	var unmapped *domain.UnmappedSignalError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, "inner", unmapped.Frame)
	assert.Equal(t, domain.Signal("ABORT"), unmapped.Signal)
}

func TestCompose_InvalidTargets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(top, inner *frame.Definition)
	}{
		{"unknown resume state", func(_, inner *frame.Definition) {
			inner.Resume[domain.SignalEnd] = frame.ResumeAt("missing")
		}},
		{"propagated signal unmapped on parent", func(_, inner *frame.Definition) {
			inner.Resume[domain.SignalStopping] = frame.Propagate(domain.SignalStopping)
		}},
		{"unknown child", func(top, _ *frame.Definition) {
			top.States["idle"] = append(top.States["idle"], frame.Candidate{Child: "ghost"})
		}},
		{"missing entry state", func(_, inner *frame.Definition) {
			inner.EntryState = "nowhere"
		}},
		{"root resumes a parent", func(top, _ *frame.Definition) {
			top.Resume[domain.SignalEnd] = frame.ResumeAt("idle")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := validFrames()
			tt.mutate(defs[0], defs[1])
			_, err := frame.Compose(defs...)
			var comp *frame.CompositionError
			assert.True(t, errors.As(err, &comp), "got %v", err)
		})
	}
}

func TestCompose_UnreachableFrame(t *testing.T) {
	defs := append(validFrames(), frame.New("orphan").Enter(frame.Text(), "s", noop).Build())
	_, err := frame.Compose(defs...)
	assert.ErrorContains(t, err, `frame "orphan" is never entered`)
}

func TestSet_ResolveOrder(t *testing.T) {
	var hit string
	mark := func(name string) frame.Handler {
		return func(context.Context, *frame.Turn) (frame.Outcome, error) {
			hit = name
			return frame.Stay(), nil
		}
	}

	root := frame.New("root").Root().
		Enter(frame.Command("start"), "s", noop).
		On("s", frame.Selection("A"), mark("first")).
		On("s", frame.SelectionExcept("END"), mark("second")).
		Fallback(frame.Selection("A"), mark("fallback")).
		Fallback(frame.Selection("END"), mark("end")).
		Build()
	set, err := frame.Compose(root)
	require.NoError(t, err)

	resolve := func(ev domain.Event) (string, bool) {
		hit = ""
		c, ok := set.Resolve(root, "s", ev)
		if !ok {
			return "", false
		}
		_, err := c.Handle(context.Background(), nil)
		require.NoError(t, err)
		return hit, true
	}

	got, _ := resolve(domain.Selection("p", "A"))
	assert.Equal(t, "first", got, "first state candidate wins over later ones and fallbacks")

	got, _ = resolve(domain.Selection("p", "B"))
	assert.Equal(t, "second", got)

	got, _ = resolve(domain.Selection("p", "END"))
	assert.Equal(t, "end", got, "fallbacks run when no state candidate matches")

	_, ok := resolve(domain.Text("p", "hello"))
	assert.False(t, ok)
}
