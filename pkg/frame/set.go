package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
)

// CompositionError collects every problem found while composing frames.
type CompositionError struct {
	Problems []error
}

func (e *CompositionError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "invalid frame composition: " + strings.Join(msgs, "; ")
}

func (e *CompositionError) Unwrap() []error {
	return e.Problems
}

// Set is a validated, read-only collection of frames.
type Set struct {
	frames map[string]*Definition
	order  []string
	roots  []*Definition
}

// Frame looks up a definition by name.
func (s *Set) Frame(name string) (*Definition, bool) {
	d, ok := s.frames[name]
	return d, ok
}

// Roots returns the frames enterable from an empty stack, in declaration order.
func (s *Set) Roots() []*Definition {
	return s.roots
}

// Frames returns every definition in declaration order.
func (s *Set) Frames() []*Definition {
	out := make([]*Definition, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.frames[name])
	}
	return out
}

// Resolve finds the candidate of def that accepts ev in state: state candidates first, then fallbacks.
// A child candidate is tested against the child's entry matcher.
func (s *Set) Resolve(def *Definition, state string, ev domain.Event) (Candidate, bool) {
	for _, c := range def.States[state] {
		if s.accepts(c, ev) {
			return c, true
		}
	}
	for _, c := range def.Fallbacks {
		if s.accepts(c, ev) {
			return c, true
		}
	}
	return Candidate{}, false
}

func (s *Set) accepts(c Candidate, ev domain.Event) bool {
	if c.Child != "" {
		child, ok := s.frames[c.Child]
		return ok && child.Entry.Match(ev)
	}
	return c.Match.Match(ev)
}

// Compose validates defs against each other and returns the resulting set.
// Every signal a frame emits must have a resume target, and every target must
// exist on each parent that enters the frame.
func Compose(defs ...*Definition) (*Set, error) {
	set := &Set{frames: make(map[string]*Definition, len(defs))}
	var problems []error

	for _, d := range defs {
		if d.Name == "" {
			problems = append(problems, errors.New("frame without a name"))
			continue
		}
		if _, dup := set.frames[d.Name]; dup {
			problems = append(problems, fmt.Errorf("frame %q declared twice", d.Name))
			continue
		}
		set.frames[d.Name] = d
		set.order = append(set.order, d.Name)
		if d.Root {
			set.roots = append(set.roots, d)
		}
	}
	if len(set.roots) == 0 {
		problems = append(problems, errors.New("no root frame"))
	}

	parents := make(map[string][]*Definition)
	for _, name := range set.order {
		d := set.frames[name]
		problems = append(problems, checkFrame(d)...)
		for _, child := range children(d) {
			if _, ok := set.frames[child]; !ok {
				problems = append(problems, fmt.Errorf("frame %q enters unknown frame %q", d.Name, child))
				continue
			}
			parents[child] = append(parents[child], d)
		}
	}

	for _, name := range set.order {
		d := set.frames[name]
		if !d.Root && len(parents[name]) == 0 {
			problems = append(problems, fmt.Errorf("frame %q is never entered", name))
		}
		for _, parent := range parents[name] {
			problems = append(problems, checkTargets(d, parent)...)
		}
	}

	if len(problems) > 0 {
		return nil, &CompositionError{Problems: problems}
	}
	return set, nil
}

func checkFrame(d *Definition) []error {
	var problems []error
	if d.EntryState == "" || !d.HasState(d.EntryState) {
		problems = append(problems, fmt.Errorf("frame %q has no valid entry state", d.Name))
	}
	for _, sig := range d.Emits {
		if sig == domain.SignalPop {
			continue
		}
		if _, ok := d.Resume[sig]; !ok {
			problems = append(problems, &domain.UnmappedSignalError{Frame: d.Name, Signal: sig})
		}
	}
	for sig, t := range d.Resume {
		if t.kind == 0 {
			problems = append(problems, fmt.Errorf("frame %q maps %q to an empty target", d.Name, sig))
		}
		if _, resume := t.IsResume(); resume && d.Root {
			problems = append(problems, fmt.Errorf("root frame %q cannot resume a parent on %q", d.Name, sig))
		}
	}
	return problems
}

func checkTargets(child, parent *Definition) []error {
	var problems []error
	for _, t := range child.Resume {
		if state, ok := t.IsResume(); ok && !parent.HasState(state) {
			problems = append(problems, fmt.Errorf("frame %q resumes %q at unknown state %q", child.Name, parent.Name, state))
		}
		if sig, ok := t.IsPropagate(); ok && sig != domain.SignalPop {
			if _, mapped := parent.Resume[sig]; !mapped {
				problems = append(problems, &domain.UnmappedSignalError{Frame: parent.Name, Signal: sig})
			}
		}
	}
	return problems
}

func children(d *Definition) []string {
	var out []string
	for _, state := range d.StateOrder {
		for _, c := range d.States[state] {
			if c.Child != "" {
				out = append(out, c.Child)
			}
		}
	}
	for _, c := range d.Fallbacks {
		if c.Child != "" {
			out = append(out, c.Child)
		}
	}
	return out
}
