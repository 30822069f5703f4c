package domain

import "time"

// FrameRef is one entry of the conversation stack.
type FrameRef struct {
	Frame string `json:"frame"`
	State string `json:"state"`
}

// Session is the conversation state of a single party.
type Session struct {
	PartyID string     `json:"party_id"`
	Stack   []FrameRef `json:"stack"`

	// Level is the subject the active capture writes to.
	Level string `json:"level,omitempty"`

	// Records holds the in-progress record per subject.
	Records map[string]Record `json:"records,omitempty"`

	// Submitted holds finalized snapshots per subject, oldest first.
	Submitted map[string][]Record `json:"submitted,omitempty"`

	// CurrentField is the field awaiting an answer.
	CurrentField string `json:"current_field,omitempty"`

	// Resuming is true after an answer was recorded, so the next menu is sent as a new message.
	Resuming bool `json:"resuming"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted form of the session when stored through an encrypting store.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates an idle session for party.
func NewSession(party string) *Session {
	now := time.Now().UTC()
	return &Session{
		PartyID:   party,
		Stack:     []FrameRef{},
		Records:   make(map[string]Record),
		Submitted: make(map[string][]Record),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Active reports whether a conversation is in progress.
func (s *Session) Active() bool {
	return len(s.Stack) > 0
}

// Top returns the innermost frame.
func (s *Session) Top() (FrameRef, bool) {
	if len(s.Stack) == 0 {
		return FrameRef{}, false
	}
	return s.Stack[len(s.Stack)-1], true
}

// Push adds a frame on top of the stack.
func (s *Session) Push(frame, state string) {
	s.Stack = append(s.Stack, FrameRef{Frame: frame, State: state})
}

// Pop removes the innermost frame.
func (s *Session) Pop() (FrameRef, bool) {
	top, ok := s.Top()
	if !ok {
		return FrameRef{}, false
	}
	s.Stack = s.Stack[:len(s.Stack)-1]
	return top, true
}

// SetState moves the innermost frame to state.
func (s *Session) SetState(state string) {
	if len(s.Stack) == 0 {
		return
	}
	s.Stack[len(s.Stack)-1].State = state
}

// Record returns the in-progress record of the current subject, creating it if needed.
func (s *Session) Record() Record {
	if s.Records == nil {
		s.Records = make(map[string]Record)
	}
	r, ok := s.Records[s.Level]
	if !ok {
		r = make(Record)
		s.Records[s.Level] = r
	}
	return r
}

// Finalize appends a snapshot of the current subject's record to Submitted.
// Empty records are not appended.
func (s *Session) Finalize() (Record, bool) {
	r := s.Records[s.Level]
	if len(r) == 0 {
		return nil, false
	}
	if s.Submitted == nil {
		s.Submitted = make(map[string][]Record)
	}
	snap := r.Clone()
	s.Submitted[s.Level] = append(s.Submitted[s.Level], snap)
	return snap, true
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Stack = append([]FrameRef(nil), s.Stack...)
	if s.Records != nil {
		out.Records = make(map[string]Record, len(s.Records))
		for k, r := range s.Records {
			out.Records[k] = r.Clone()
		}
	}
	if s.Submitted != nil {
		out.Submitted = make(map[string][]Record, len(s.Submitted))
		for k, list := range s.Submitted {
			cp := make([]Record, len(list))
			for i, r := range list {
				cp[i] = r.Clone()
			}
			out.Submitted[k] = cp
		}
	}
	return &out
}
