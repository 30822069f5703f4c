// Package content loads the configurable parts of a bot: texts, button labels,
// the field registry and the choice lists. Files are YAML or TOML.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/fields"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultContent []byte

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported content format")

// Bot identifies the bot variant.
type Bot struct {
	Name    string `mapstructure:"name"`
	Subject string `mapstructure:"subject"`
}

// Texts are the messages of the conversation.
type Texts struct {
	Greeting       string `mapstructure:"greeting"`
	ReasonPrompt   string `mapstructure:"reason_prompt"`
	Emergency      string `mapstructure:"emergency"`
	Goodbye        string `mapstructure:"goodbye"`
	ActionPrompt   string `mapstructure:"action_prompt"`
	Submitted      string `mapstructure:"submitted"`
	FieldMenu      string `mapstructure:"field_menu"`
	FieldMenuAgain string `mapstructure:"field_menu_again"`
	InputPrompt    string `mapstructure:"input_prompt"`
	ChoicePrompt   string `mapstructure:"choice_prompt"`
	ContactPrompt  string `mapstructure:"contact_prompt"`
	LocationPrompt string `mapstructure:"location_prompt"`
	Invalid        string `mapstructure:"invalid"`
	SummaryEmpty   string `mapstructure:"summary_empty"`
}

// Buttons are the labels of the menu actions. Discriminators are fixed.
type Buttons struct {
	General       string `mapstructure:"general"`
	Emergency     string `mapstructure:"emergency"`
	Exit          string `mapstructure:"exit"`
	StartCapture  string `mapstructure:"start_capture"`
	Show          string `mapstructure:"show"`
	GoBack        string `mapstructure:"go_back"`
	Back          string `mapstructure:"back"`
	Submit        string `mapstructure:"submit"`
	Done          string `mapstructure:"done"`
	ShareContact  string `mapstructure:"share_contact"`
	ShareLocation string `mapstructure:"share_location"`
}

// FieldSpec is the configured form of a domain.Field.
type FieldSpec struct {
	ID       string            `mapstructure:"id"`
	Label    string            `mapstructure:"label"`
	Kind     string            `mapstructure:"kind"`
	Prompt   string            `mapstructure:"prompt"`
	Choices  string            `mapstructure:"choices"`
	Hidden   bool              `mapstructure:"hidden"`
	Next     string            `mapstructure:"next"`
	Branches map[string]string `mapstructure:"branches"`
}

// ChoiceSpec is one configured choice.
type ChoiceSpec struct {
	ID    string `mapstructure:"id"`
	Label string `mapstructure:"label"`
}

// Content is everything a bot variant configures.
type Content struct {
	Bot     Bot                     `mapstructure:"bot"`
	Texts   Texts                   `mapstructure:"texts"`
	Buttons Buttons                 `mapstructure:"buttons"`
	Fields  []FieldSpec             `mapstructure:"fields"`
	Choices map[string][]ChoiceSpec `mapstructure:"choices"`
}

// Default returns the embedded identity bot content.
func Default() (*Content, error) {
	return Parse(defaultContent, "yaml")
}

// Load reads a content file, picking the decoder from its extension.
// An empty path yields the embedded default.
func Load(path string) (*Content, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes content in the given format ("yaml", "yml" or "toml").
func Parse(data []byte, format string) (*Content, error) {
	raw := make(map[string]any)
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml content: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse toml content: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var c Content
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Content) applyDefaults() {
	if c.Bot.Subject == "" {
		c.Bot.Subject = "self"
	}
	b := &c.Buttons
	for dst, v := range map[*string]string{
		&b.General:      "GENERAL",
		&b.Emergency:    "EMERGENCY",
		&b.Exit:         "Exit",
		&b.StartCapture: "Start Capturing",
		&b.Show:         "Show Your Info",
		&b.GoBack:       "<< Go Back",
		&b.Back:         "Back",
		&b.Submit:       "Submit",
		&b.Done:         "Done",
	} {
		if *dst == "" {
			*dst = v
		}
	}
}

// IdentificationList names the identification-type choice list. When present it
// must offer exactly two options.
const IdentificationList = "identification"

// Registry builds the field registry. Choice discriminators are resolved here, once.
func (c *Content) Registry() (*fields.Registry, error) {
	if list, ok := c.Choices[IdentificationList]; ok && len(list) != 2 {
		return nil, fmt.Errorf("choice list %q must have exactly 2 options, got %d", IdentificationList, len(list))
	}
	defs := make([]domain.Field, len(c.Fields))
	for i, f := range c.Fields {
		defs[i] = domain.Field{
			ID:       f.ID,
			Label:    f.Label,
			Kind:     domain.FieldKind(strings.ToLower(f.Kind)),
			Prompt:   f.Prompt,
			Choices:  f.Choices,
			Hidden:   f.Hidden,
			Next:     f.Next,
			Branches: f.Branches,
		}
	}
	lists := make(map[string][]domain.Choice, len(c.Choices))
	for name, specs := range c.Choices {
		list := make([]domain.Choice, len(specs))
		for i, s := range specs {
			list[i] = domain.Choice{ID: s.ID, Label: s.Label}
		}
		lists[name] = list
	}
	return fields.NewRegistry(defs, lists)
}

// CollectorTexts maps the configured texts onto the collector's.
func (c *Content) CollectorTexts() fields.Texts {
	return fields.Texts{
		Menu:           c.Texts.FieldMenu,
		MenuAgain:      c.Texts.FieldMenuAgain,
		Prompt:         c.Texts.InputPrompt,
		ChoicePrompt:   c.Texts.ChoicePrompt,
		ContactPrompt:  c.Texts.ContactPrompt,
		LocationPrompt: c.Texts.LocationPrompt,
		ContactButton:  c.Buttons.ShareContact,
		LocationButton: c.Buttons.ShareLocation,
		Invalid:        c.Texts.Invalid,
		SummaryEmpty:   c.Texts.SummaryEmpty,
		Submit:         c.Buttons.Submit,
		Done:           c.Buttons.Done,
	}
}
