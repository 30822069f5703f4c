package frame

import (
	"github.com/botarmy/switchboard/pkg/domain"
)

type targetKind int

const (
	targetResume targetKind = iota + 1
	targetPropagate
	targetFinish
)

// Target is what a terminal signal becomes on the parent frame.
type Target struct {
	kind   targetKind
	state  string
	signal domain.Signal
}

// ResumeAt sets the parent to state.
func ResumeAt(state string) Target { return Target{kind: targetResume, state: state} }

// Propagate terminates the parent as well, with sig.
func Propagate(sig domain.Signal) Target { return Target{kind: targetPropagate, signal: sig} }

// Finish empties the whole stack.
func Finish() Target { return Target{kind: targetFinish} }

// IsResume reports whether the target resumes the parent, and at which state.
func (t Target) IsResume() (string, bool) { return t.state, t.kind == targetResume }

// IsPropagate reports whether the target terminates the parent, and with which signal.
func (t Target) IsPropagate() (domain.Signal, bool) { return t.signal, t.kind == targetPropagate }

// IsFinish reports whether the target empties the stack.
func (t Target) IsFinish() bool { return t.kind == targetFinish }

func (t Target) String() string {
	switch t.kind {
	case targetResume:
		return "resume " + t.state
	case targetPropagate:
		return "propagate " + string(t.signal)
	case targetFinish:
		return "finish"
	}
	return "invalid"
}

// Candidate is one entry of a state's ordered list. It either runs Handle or enters Child.
type Candidate struct {
	Match  Matcher
	Handle Handler
	Child  string
}

// Definition is an immutable frame template shared by every session.
type Definition struct {
	Name string

	// Root frames are entered from an empty stack.
	Root bool

	Entry      Matcher
	EntryState string
	OnEntry    Handler

	States     map[string][]Candidate
	StateOrder []string
	Fallbacks  []Candidate

	Resume map[domain.Signal]Target
	Emits  []domain.Signal
}

// HasState reports whether state is declared.
func (d *Definition) HasState(state string) bool {
	_, ok := d.States[state]
	return ok
}

// Target returns the resume target for sig.
func (d *Definition) Target(sig domain.Signal) (Target, bool) {
	t, ok := d.Resume[sig]
	return t, ok
}
