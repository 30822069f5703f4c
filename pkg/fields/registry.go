package fields

import (
	"errors"
	"fmt"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
)

// ErrUnknownField is returned when a field ID is not part of the registry.
var ErrUnknownField = errors.New("unknown field")

// Registry is the ordered, read-only set of collectible fields and the choice lists they use.
type Registry struct {
	fields []domain.Field
	byID   map[string]int
	lists  map[string][]domain.Choice
}

// NewRegistry validates fields and lists and returns a registry.
//
// Choice fields must reference an existing list. Branch keys must be choice IDs of
// that list, every choice of a branching field must have a branch, and branches
// must lead to distinct, existing fields.
func NewRegistry(fields []domain.Field, lists map[string][]domain.Choice) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]int, len(fields)),
		lists: make(map[string][]domain.Choice, len(lists)),
	}
	var errs []error

	for name, list := range lists {
		seen := make(map[string]bool, len(list))
		for _, c := range list {
			if c.ID == "" || c.Label == "" {
				errs = append(errs, fmt.Errorf("choice list %q: choice needs both id and label", name))
			}
			if seen[c.ID] {
				errs = append(errs, fmt.Errorf("choice list %q: duplicate choice %q", name, c.ID))
			}
			seen[c.ID] = true
		}
		r.lists[name] = append([]domain.Choice(nil), list...)
	}

	for i, f := range fields {
		if f.ID == "" {
			errs = append(errs, fmt.Errorf("field #%d has no id", i))
			continue
		}
		if _, dup := r.byID[f.ID]; dup {
			errs = append(errs, fmt.Errorf("field %q declared twice", f.ID))
			continue
		}
		if !f.Kind.Valid() {
			errs = append(errs, fmt.Errorf("field %q has unknown kind %q", f.ID, f.Kind))
		}
		if f.Label == "" {
			f.Label = f.ID
		}
		r.byID[f.ID] = len(r.fields)
		r.fields = append(r.fields, f)
	}

	for _, f := range r.fields {
		errs = append(errs, r.checkLinks(f)...)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid field registry: %w", err)
	}
	return r, nil
}

func (r *Registry) checkLinks(f domain.Field) []error {
	var errs []error
	if f.Next != "" {
		if _, ok := r.byID[f.Next]; !ok {
			errs = append(errs, fmt.Errorf("field %q: next field %q does not exist", f.ID, f.Next))
		}
	}
	if f.Kind == domain.FieldChoice {
		if _, ok := r.lists[f.Choices]; !ok {
			errs = append(errs, fmt.Errorf("field %q: choice list %q does not exist", f.ID, f.Choices))
			return errs
		}
	}
	if len(f.Branches) == 0 {
		return errs
	}
	if f.Kind != domain.FieldChoice {
		return append(errs, fmt.Errorf("field %q: only choice fields can branch", f.ID))
	}

	targets := make(map[string]string, len(f.Branches))
	for _, c := range r.lists[f.Choices] {
		next, ok := f.Branches[c.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("field %q: choice %q has no branch", f.ID, c.ID))
			continue
		}
		if _, ok := r.byID[next]; !ok {
			errs = append(errs, fmt.Errorf("field %q: branch %q leads to unknown field %q", f.ID, c.ID, next))
		}
		if other, dup := targets[next]; dup {
			errs = append(errs, fmt.Errorf("field %q: choices %q and %q lead to the same field", f.ID, other, c.ID))
		}
		targets[next] = c.ID
	}
	for id := range f.Branches {
		if _, ok := r.choice(f.Choices, id); !ok {
			errs = append(errs, fmt.Errorf("field %q: branch key %q is not a choice", f.ID, id))
		}
	}
	return errs
}

// Fields returns every field in declaration order.
func (r *Registry) Fields() []domain.Field {
	return append([]domain.Field(nil), r.fields...)
}

// Menu returns the fields shown in the selection menu, in order.
func (r *Registry) Menu() []domain.Field {
	out := make([]domain.Field, 0, len(r.fields))
	for _, f := range r.fields {
		if !f.Hidden {
			out = append(out, f)
		}
	}
	return out
}

// Field looks up a field by ID.
func (r *Registry) Field(id string) (domain.Field, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Field{}, false
	}
	return r.fields[i], true
}

// Choices returns the named choice list.
func (r *Registry) Choices(list string) []domain.Choice {
	return append([]domain.Choice(nil), r.lists[list]...)
}

// ResolveChoice maps an answer to a choice of f's list, by discriminator or by label.
// Labels compare case-insensitively after trimming.
func (r *Registry) ResolveChoice(f domain.Field, answer string) (domain.Choice, bool) {
	if c, ok := r.choice(f.Choices, answer); ok {
		return c, true
	}
	answer = strings.TrimSpace(answer)
	for _, c := range r.lists[f.Choices] {
		if strings.EqualFold(c.Label, answer) {
			return c, true
		}
	}
	return domain.Choice{}, false
}

func (r *Registry) choice(list, id string) (domain.Choice, bool) {
	for _, c := range r.lists[list] {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Choice{}, false
}
