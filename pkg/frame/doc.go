/*
Package frame defines conversation frames: named state machines that are
composed into a stack at runtime.

A frame declares its entry matcher, the ordered candidates of each state,
fallbacks tried when no state-specific candidate matches, and a resume map
that translates the terminal signals it emits into a target on its parent.

	capture := frame.New("capture").
		Enter(frame.Selection("START_CAPTURE"), "selecting-field", showMenu).
		On("selecting-field", frame.SelectionExcept("END"), selectField).
		Fallback(frame.Selection("END"), finish).
		Resume(domain.SignalEnd, frame.ResumeAt("selecting-action")).
		Emits(domain.SignalEnd)

Definitions are validated together by Compose, which rejects any terminal
signal without a resume target.
*/
package frame
