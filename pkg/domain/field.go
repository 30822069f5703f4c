package domain

// FieldKind determines which events a field accepts and how it is prompted.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldChoice   FieldKind = "choice"
	FieldContact  FieldKind = "contact"
	FieldLocation FieldKind = "location"
)

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldText, FieldChoice, FieldContact, FieldLocation:
		return true
	}
	return false
}

// Choice is one entry of a choice list. ID is the stable discriminator.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Field describes one piece of data collected from the party.
type Field struct {
	ID     string    `json:"id"`
	Label  string    `json:"label"`
	Kind   FieldKind `json:"kind"`
	Prompt string    `json:"prompt,omitempty"`

	// Choices names the choice list used by choice fields.
	Choices string `json:"choices,omitempty"`

	// Hidden fields are only reachable through a branch.
	Hidden bool `json:"hidden,omitempty"`

	// Next is an unconditional successor, asked right after this field.
	Next string `json:"next,omitempty"`

	// Branches maps a choice ID to the field asked next.
	Branches map[string]string `json:"branches,omitempty"`
}

// Successor returns the field to ask after v was recorded, if any.
func (f Field) Successor(v Value) (string, bool) {
	if v.Choice != nil {
		if next, ok := f.Branches[v.Choice.ID]; ok && next != "" {
			return next, true
		}
	}
	if f.Next != "" {
		return f.Next, true
	}
	return "", false
}
