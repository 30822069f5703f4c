package fields

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
)

// Discriminators of the fixed field-menu actions.
const (
	DoneValue   = "END"
	SubmitValue = "SUBMIT"
)

// ErrNoCurrentField is returned when an answer arrives while no field is awaiting one.
var ErrNoCurrentField = errors.New("no field awaiting an answer")

// Texts are the strings the collector renders.
type Texts struct {
	Menu           string
	MenuAgain      string
	Prompt         string
	ChoicePrompt   string
	ContactPrompt  string
	LocationPrompt string
	ContactButton  string
	LocationButton string
	Invalid        string
	SummaryEmpty   string
	Submit         string
	Done           string
	Completed      string
}

// DefaultTexts returns the stock English texts.
func DefaultTexts() Texts {
	return Texts{
		Menu:           "Please select a field to update.",
		MenuAgain:      "Got it! Please select a field to update.",
		Prompt:         "Okay, please write and send the information",
		ChoicePrompt:   "Okay, please choose one of the options below",
		ContactPrompt:  "Okay, please share your contact number using the button below",
		LocationPrompt: "Okay, please share your location using the button below",
		ContactButton:  "Share contact",
		LocationButton: "Share location",
		Invalid:        "Sorry, that answer does not fit this field.",
		SummaryEmpty:   "No information yet.",
		Submit:         "Submit",
		Done:           "Done",
		Completed:      "✅",
	}
}

// Answer is the outcome of a recorded event.
type Answer struct {
	Field domain.Field
	Value domain.Value

	// Next is the field to ask right away, when the answer branches.
	Next string
}

// Collector prompts for fields and records answers into the session's current record.
type Collector struct {
	registry *Registry
	texts    Texts
	columns  int
}

// Option configures the Collector.
type Option func(*Collector)

// WithTexts overrides the rendered texts. Empty entries keep their default.
func WithTexts(t Texts) Option {
	return func(c *Collector) {
		c.texts = mergeTexts(c.texts, t)
	}
}

// WithColumns sets how many field buttons share a menu row.
func WithColumns(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.columns = n
		}
	}
}

// NewCollector creates a collector over registry.
func NewCollector(registry *Registry, opts ...Option) *Collector {
	c := &Collector{
		registry: registry,
		texts:    DefaultTexts(),
		columns:  2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the field registry.
func (c *Collector) Registry() *Registry {
	return c.registry
}

// Menu renders the field-selection menu with a completion mark on answered fields.
// It replaces the last prompt, unless an answer was just recorded, in which case
// it is sent as a new message. Rendering clears the resuming flag.
func (c *Collector) Menu(s *domain.Session) domain.Render {
	r := domain.Render{Mode: domain.ModeReplace, Text: c.texts.Menu}
	if s.Resuming {
		r.Mode = domain.ModeNew
		r.Text = c.texts.MenuAgain
	}
	s.Resuming = false

	record := s.Records[s.Level]
	var row []domain.Option
	for _, f := range c.registry.Menu() {
		label := f.Label
		if record.Has(f.ID) {
			label = c.texts.Completed + " " + label
		}
		row = append(row, domain.Option{Label: label, Value: f.ID})
		if len(row) == c.columns {
			r.Options = append(r.Options, row)
			row = nil
		}
	}
	if len(row) > 0 {
		r.Options = append(r.Options, row)
	}
	r.Options = append(r.Options, []domain.Option{
		{Label: c.texts.Submit, Value: SubmitValue},
		{Label: c.texts.Done, Value: DoneValue},
	})
	return r
}

// Prompt moves the cursor to fieldID and renders its kind-specific prompt.
// A text prompt replaces the menu it was picked from; follow-up prompts and
// prompts carrying a reply keyboard are sent as new messages.
// Hidden fields are only reachable as follow-ups; picked directly they are unknown.
func (c *Collector) Prompt(s *domain.Session, fieldID string, followUp bool) (domain.Field, domain.Render, error) {
	f, ok := c.registry.Field(fieldID)
	if !ok || (f.Hidden && !followUp) {
		return domain.Field{}, domain.Render{}, fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
	}
	s.CurrentField = f.ID
	return f, c.prompt(f, followUp), nil
}

func (c *Collector) prompt(f domain.Field, followUp bool) domain.Render {
	r := domain.Render{Mode: domain.ModeNew}
	switch f.Kind {
	case domain.FieldContact:
		r.Text = pick(f.Prompt, c.texts.ContactPrompt)
		r.Reply = domain.ReplyContact
		r.ReplyButton = c.texts.ContactButton
	case domain.FieldLocation:
		r.Text = pick(f.Prompt, c.texts.LocationPrompt)
		r.Reply = domain.ReplyLocation
		r.ReplyButton = c.texts.LocationButton
	case domain.FieldChoice:
		r.Text = pick(f.Prompt, c.texts.ChoicePrompt)
		r.Reply = domain.ReplyChoice
		for _, ch := range c.registry.Choices(f.Choices) {
			r.Choices = append(r.Choices, ch.Label)
		}
	default:
		r.Text = pick(f.Prompt, c.texts.Prompt)
		if !followUp {
			r.Mode = domain.ModeReplace
		}
	}
	return r
}

// Reprompt renders the current field's prompt again after a rejected answer.
func (c *Collector) Reprompt(s *domain.Session) (domain.Render, error) {
	f, ok := c.registry.Field(s.CurrentField)
	if !ok {
		return domain.Render{}, ErrNoCurrentField
	}
	r := c.prompt(f, true)
	r.Text = c.texts.Invalid + "\n" + r.Text
	return r, nil
}

// Record validates ev against the current field and stores it in the session record.
//
// An invalid answer returns a *domain.ValidationError and leaves the record
// unchanged. When the answer branches, Answer.Next names the follow-up field and
// the cursor stays in place for the caller to prompt it. Otherwise the cursor is
// cleared and the session is marked as resuming.
func (c *Collector) Record(s *domain.Session, ev domain.Event) (Answer, error) {
	f, ok := c.registry.Field(s.CurrentField)
	if !ok {
		return Answer{}, ErrNoCurrentField
	}
	v, err := c.parse(f, ev)
	if err != nil {
		return Answer{}, err
	}

	record := s.Record()
	record[f.ID] = v
	next, ok := f.Successor(v)
	// Answers of branches not taken would contradict the new answer.
	for _, target := range f.Branches {
		if target != next {
			delete(record, target)
		}
	}

	ans := Answer{Field: f, Value: v}
	if ok {
		ans.Next = next
		return ans, nil
	}
	s.CurrentField = ""
	s.Resuming = true
	return ans, nil
}

func (c *Collector) parse(f domain.Field, ev domain.Event) (domain.Value, error) {
	invalid := func(reason string) (domain.Value, error) {
		return domain.Value{}, &domain.ValidationError{Field: f.ID, Reason: reason}
	}

	switch f.Kind {
	case domain.FieldText:
		if ev.Kind != domain.EventText {
			return invalid("expected text, got " + string(ev.Kind))
		}
		text := strings.TrimSpace(ev.Value)
		if text == "" {
			return invalid("empty text")
		}
		return domain.Value{Kind: f.Kind, Text: text}, nil

	case domain.FieldContact:
		if ev.Kind != domain.EventContact || ev.Contact == nil {
			return invalid("expected a shared contact, got " + string(ev.Kind))
		}
		if strings.TrimSpace(ev.Contact.Phone) == "" {
			return invalid("contact has no phone number")
		}
		contact := *ev.Contact
		return domain.Value{Kind: f.Kind, Contact: &contact}, nil

	case domain.FieldLocation:
		if ev.Kind != domain.EventLocation || ev.Location == nil {
			return invalid("expected a shared location, got " + string(ev.Kind))
		}
		loc := *ev.Location
		if math.Abs(loc.Latitude) > 90 || math.Abs(loc.Longitude) > 180 {
			return invalid("coordinates out of range")
		}
		return domain.Value{Kind: f.Kind, Location: &loc}, nil

	case domain.FieldChoice:
		if ev.Kind != domain.EventText && ev.Kind != domain.EventSelection {
			return invalid("expected a choice, got " + string(ev.Kind))
		}
		choice, ok := c.registry.ResolveChoice(f, ev.Value)
		if !ok {
			return invalid(fmt.Sprintf("%q is not one of the options", ev.Value))
		}
		return domain.Value{Kind: f.Kind, Choice: &choice}, nil
	}
	return invalid("unsupported field kind " + string(f.Kind))
}

// Summary renders the answered fields of the current record, one per line.
func (c *Collector) Summary(s *domain.Session) string {
	record := s.Records[s.Level]
	var lines []string
	for _, f := range c.registry.Fields() {
		if v, ok := record[f.ID]; ok {
			lines = append(lines, f.Label+": "+v.String())
		}
	}
	if len(lines) == 0 {
		return c.texts.SummaryEmpty
	}
	return strings.Join(lines, "\n")
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func mergeTexts(base, over Texts) Texts {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.Menu, over.Menu)
	set(&base.MenuAgain, over.MenuAgain)
	set(&base.Prompt, over.Prompt)
	set(&base.ChoicePrompt, over.ChoicePrompt)
	set(&base.ContactPrompt, over.ContactPrompt)
	set(&base.LocationPrompt, over.LocationPrompt)
	set(&base.ContactButton, over.ContactButton)
	set(&base.LocationButton, over.LocationButton)
	set(&base.Invalid, over.Invalid)
	set(&base.SummaryEmpty, over.SummaryEmpty)
	set(&base.Submit, over.Submit)
	set(&base.Done, over.Done)
	set(&base.Completed, over.Completed)
	return base
}
