package domain

import "strconv"

// Value is a recorded answer. Exactly one payload is set, according to Kind.
type Value struct {
	Kind     FieldKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Choice   *Choice   `json:"choice,omitempty"`
	Contact  *Contact  `json:"contact,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// String renders the value the way exports and summaries show it.
func (v Value) String() string {
	switch v.Kind {
	case FieldChoice:
		if v.Choice != nil {
			return v.Choice.Label
		}
	case FieldContact:
		if v.Contact != nil {
			return v.Contact.Phone
		}
	case FieldLocation:
		if v.Location != nil {
			return FormatLocation(*v.Location)
		}
	}
	return v.Text
}

// FormatLocation renders a location as "lat,long".
func FormatLocation(l Location) string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// Record maps field IDs to answers. An absent field has not been answered.
type Record map[string]Value

// Has reports whether the field was answered.
func (r Record) Has(fieldID string) bool {
	_, ok := r[fieldID]
	return ok
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if v.Choice != nil {
			c := *v.Choice
			v.Choice = &c
		}
		if v.Contact != nil {
			c := *v.Contact
			v.Contact = &c
		}
		if v.Location != nil {
			l := *v.Location
			v.Location = &l
		}
		out[k] = v
	}
	return out
}

// Flatten produces the label -> string mapping used for export.
// Answers for fields missing from fields are keyed by their ID.
func (r Record) Flatten(fields []Field) map[string]string {
	out := make(map[string]string, len(r))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.ID] = true
		if v, ok := r[f.ID]; ok {
			out[f.Label] = v.String()
		}
	}
	for id, v := range r {
		if !seen[id] {
			out[id] = v.String()
		}
	}
	return out
}
