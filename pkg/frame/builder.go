package frame

import "github.com/botarmy/switchboard/pkg/domain"

// Builder provides a fluent API for declaring a frame.
type Builder struct {
	def Definition
}

// New starts a frame definition.
func New(name string) *Builder {
	return &Builder{def: Definition{
		Name:   name,
		States: make(map[string][]Candidate),
		Resume: make(map[domain.Signal]Target),
	}}
}

// Root marks the frame as enterable from an empty stack.
func (b *Builder) Root() *Builder {
	b.def.Root = true
	return b
}

// Enter sets the entry matcher, the entry state and the handler run on entry.
func (b *Builder) Enter(m Matcher, state string, h Handler) *Builder {
	b.def.Entry = m
	b.def.EntryState = state
	b.def.OnEntry = h
	b.state(state)
	return b
}

// State declares a state without candidates. States are also declared implicitly by On and Child.
func (b *Builder) State(name string) *Builder {
	b.state(name)
	return b
}

// On appends a handler candidate to state.
func (b *Builder) On(state string, m Matcher, h Handler) *Builder {
	b.state(state)
	b.def.States[state] = append(b.def.States[state], Candidate{Match: m, Handle: h})
	return b
}

// Child appends a candidate that pushes the named frame when its entry matcher accepts the event.
func (b *Builder) Child(state, frame string) *Builder {
	b.state(state)
	b.def.States[state] = append(b.def.States[state], Candidate{Child: frame})
	return b
}

// Fallback appends a candidate tried when no state-specific candidate matches.
func (b *Builder) Fallback(m Matcher, h Handler) *Builder {
	b.def.Fallbacks = append(b.def.Fallbacks, Candidate{Match: m, Handle: h})
	return b
}

// Resume maps a terminal signal of this frame to a target on its parent.
func (b *Builder) Resume(sig domain.Signal, t Target) *Builder {
	b.def.Resume[sig] = t
	return b
}

// Emits declares the terminal signals the handlers of this frame may return.
func (b *Builder) Emits(sigs ...domain.Signal) *Builder {
	b.def.Emits = append(b.def.Emits, sigs...)
	return b
}

// Build returns the definition. Validation happens in Compose.
func (b *Builder) Build() *Definition {
	def := b.def
	return &def
}

func (b *Builder) state(name string) {
	if _, ok := b.def.States[name]; ok {
		return
	}
	b.def.States[name] = nil
	b.def.StateOrder = append(b.def.StateOrder, name)
}
