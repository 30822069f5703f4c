// Package console is a terminal transport for local conversations.
//
// Inline options are printed with a number; typing the number presses the
// option. A contact or location is shared by typing "@contact <phone>" or
// "@location <lat>,<long>".
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/botarmy/switchboard/pkg/domain"
)

// DefaultParty is the party ID of the local user.
const DefaultParty = "console"

// UpdateHandler receives the updates typed by the user.
type UpdateHandler func(ctx context.Context, u domain.Update) error

// Console reads updates from r and writes renders to w.
type Console struct {
	reader   *bufio.Reader
	writer   io.Writer
	out      *termenv.Output
	renderer func(string) (string, error)
	party    string

	mu      sync.Mutex
	options []domain.Option
	choices []string
}

// Option configures a Console.
type Option func(*Console)

// WithRenderer renders message text, typically markdown, before printing.
func WithRenderer(render func(string) (string, error)) Option {
	return func(c *Console) {
		c.renderer = render
	}
}

// WithParty sets the party ID attached to updates.
func WithParty(id string) Option {
	return func(c *Console) {
		c.party = id
	}
}

// New creates a console over r and w.
func New(r io.Reader, w io.Writer, opts ...Option) *Console {
	c := &Console{
		reader: bufio.NewReader(r),
		writer: w,
		out:    termenv.NewOutput(w),
		party:  DefaultParty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Party is the party ID of the local user.
func (c *Console) Party() string {
	return c.party
}

// Deliver implements ports.Transport. Every render is printed; replace and
// new modes look the same on a terminal. Numbers typed next refer to the
// options of the last render.
func (c *Console) Deliver(ctx context.Context, partyID string, r domain.Render) error {
	text := r.Text
	if c.renderer != nil {
		if rendered, err := c.renderer(text); err == nil {
			text = strings.TrimSpace(rendered)
		}
	}
	fmt.Fprintln(c.writer, text)

	var options []domain.Option
	for _, row := range r.Options {
		var cells []string
		for _, o := range row {
			options = append(options, o)
			n := c.out.String(fmt.Sprintf("[%d]", len(options))).Bold()
			cells = append(cells, fmt.Sprintf("%s %s", n, o.Label))
		}
		if len(cells) > 0 {
			fmt.Fprintln(c.writer, "  "+strings.Join(cells, "   "))
		}
	}

	var choices []string
	switch r.Reply {
	case domain.ReplyContact:
		fmt.Fprintln(c.writer, c.out.String(fmt.Sprintf("  (%s: type @contact <phone>)", r.ReplyButton)).Faint())
	case domain.ReplyLocation:
		fmt.Fprintln(c.writer, c.out.String(fmt.Sprintf("  (%s: type @location <lat>,<long>)", r.ReplyButton)).Faint())
	case domain.ReplyChoice:
		choices = r.Choices
		for i, ch := range choices {
			fmt.Fprintf(c.writer, "  %s %s\n", c.out.String(fmt.Sprintf("(%d)", i+1)).Bold(), ch)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = options
	c.choices = choices
	return nil
}

// Next prompts for and reads one update. It returns io.EOF when input ends.
func (c *Console) Next(ctx context.Context) (domain.Update, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Update{}, err
		}
		fmt.Fprint(c.writer, "> ")

		line, err := c.reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return domain.Update{}, err
			}
			continue
		}

		u, perr := c.parse(line)
		if perr != nil {
			fmt.Fprintf(c.writer, "Error: %v. Please try again.\n", perr)
			if err != nil {
				return domain.Update{}, err
			}
			continue
		}
		return u, nil
	}
}

// Run reads updates and passes them to handle until input ends or ctx is done.
func (c *Console) Run(ctx context.Context, handle UpdateHandler) error {
	for {
		u, err := c.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handle(ctx, u); err != nil {
			return err
		}
	}
}

func (c *Console) parse(line string) (domain.Update, error) {
	u := domain.Update{Party: c.party}

	switch {
	case strings.HasPrefix(line, "@contact"):
		phone := strings.TrimSpace(strings.TrimPrefix(line, "@contact"))
		if phone == "" {
			return u, errors.New("missing phone number")
		}
		u.Contact = &domain.Contact{Phone: phone}
		return u, nil
	case strings.HasPrefix(line, "@location"):
		loc, err := parseLocation(strings.TrimSpace(strings.TrimPrefix(line, "@location")))
		if err != nil {
			return u, err
		}
		u.Location = &loc
		return u, nil
	}

	if n, err := strconv.Atoi(line); err == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		switch {
		case n >= 1 && n <= len(c.options):
			u.CallbackData = c.options[n-1].Value
			return u, nil
		case n >= 1 && n <= len(c.choices):
			u.Text = c.choices[n-1]
			return u, nil
		}
	}

	u.Text = line
	return u, nil
}

func parseLocation(s string) (domain.Location, error) {
	lat, long, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Location{}, fmt.Errorf("location %q must be <lat>,<long>", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(long), 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("invalid longitude: %w", err)
	}
	return domain.Location{Latitude: la, Longitude: lo}, nil
}
