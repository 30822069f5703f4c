package domain

// RenderMode tells the transport how to present a render.
type RenderMode string

const (
	// ModeReplace edits the last prompt sent to the party in place.
	ModeReplace RenderMode = "replace"
	// ModeNew sends a fresh message.
	ModeNew RenderMode = "new"
)

// ReplyKind selects the reply keyboard attached to a render.
type ReplyKind string

const (
	ReplyNone     ReplyKind = ""
	ReplyContact  ReplyKind = "contact"
	ReplyLocation ReplyKind = "location"
	ReplyChoice   ReplyKind = "choice"
)

// Option is a labelled action with an opaque discriminator.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Render is one instruction for the transport.
type Render struct {
	Mode RenderMode `json:"mode"`
	Text string     `json:"text"`

	// Options are inline actions, grouped in rows.
	Options [][]Option `json:"options,omitempty"`

	Reply       ReplyKind `json:"reply,omitempty"`
	ReplyButton string    `json:"reply_button,omitempty"`
	Choices     []string  `json:"choices,omitempty"`
}

// HasOptions reports whether the render carries any inline action.
func (r Render) HasOptions() bool {
	for _, row := range r.Options {
		if len(row) > 0 {
			return true
		}
	}
	return false
}
