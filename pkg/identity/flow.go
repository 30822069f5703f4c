package identity

import (
	"fmt"
	"time"

	"github.com/botarmy/switchboard/pkg/content"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/fields"
	"github.com/botarmy/switchboard/pkg/frame"
	"github.com/google/uuid"
)

// Frame names.
const (
	FrameReason  = "reason"
	FrameAction  = "action"
	FrameCapture = "capture"
)

// States.
const (
	StateSelectingReason = "selecting-reason"
	StateSelectingAction = "selecting-action"
	StateShowingSummary  = "showing-summary"
	StateSelectingField  = "selecting-field"
	StateAwaitingInput   = "awaiting-input"
	StateAwaitingChoice  = "awaiting-choice"
)

// Button discriminators.
const (
	General      = "GENERAL"
	Emergency    = "EMERGENCY"
	End          = string(domain.SignalEnd)
	StartCapture = "START_CAPTURE"
	Show         = "SHOW"
	Submit       = fields.SubmitValue
)

// Commands.
const (
	CommandStart = "start"
	CommandStop  = "stop"
)

// Flow holds the composed frames of one bot variant.
type Flow struct {
	content   *content.Content
	collector *fields.Collector
	frames    *frame.Set

	newID func() string
	now   func() time.Time
}

// Option configures a Flow.
type Option func(*Flow)

// WithIDGenerator overrides how export IDs are produced.
func WithIDGenerator(fn func() string) Option {
	return func(f *Flow) {
		f.newID = fn
	}
}

// WithClock overrides the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// New builds and composes the frames for c.
func New(c *content.Content, opts ...Option) (*Flow, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("invalid field registry: %w", err)
	}

	f := &Flow{
		content:   c,
		collector: fields.NewCollector(registry, fields.WithTexts(c.CollectorTexts())),
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}

	set, err := frame.Compose(f.reasonFrame(), f.actionFrame(), f.captureFrame())
	if err != nil {
		return nil, err
	}
	f.frames = set
	return f, nil
}

// Frames returns the composed frame set.
func (f *Flow) Frames() *frame.Set { return f.frames }

// Collector returns the field collector.
func (f *Flow) Collector() *fields.Collector { return f.collector }

// Content returns the bot content.
func (f *Flow) Content() *content.Content { return f.content }
