package frame

import (
	"regexp"
	"slices"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
)

// Matcher decides whether a candidate accepts an event.
type Matcher struct {
	desc string
	fn   func(domain.Event) bool
}

// Match reports whether ev is accepted. The zero Matcher accepts nothing.
func (m Matcher) Match(ev domain.Event) bool {
	if m.fn == nil {
		return false
	}
	return m.fn(ev)
}

// String describes the matcher, for graphs and logs.
func (m Matcher) String() string {
	return m.desc
}

// Command matches the command name, without the leading slash.
func Command(name string) Matcher {
	return Matcher{
		desc: "/" + name,
		fn: func(ev domain.Event) bool {
			return ev.Kind == domain.EventCommand && ev.Name == name
		},
	}
}

// Selection matches a selection carrying exactly value.
func Selection(value string) Matcher {
	return Matcher{
		desc: value,
		fn: func(ev domain.Event) bool {
			return ev.Kind == domain.EventSelection && ev.Value == value
		},
	}
}

// SelectionMatching matches selections whose value matches pattern. It panics if pattern does not compile.
func SelectionMatching(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return Matcher{
		desc: "~" + pattern,
		fn: func(ev domain.Event) bool {
			return ev.Kind == domain.EventSelection && re.MatchString(ev.Value)
		},
	}
}

// SelectionExcept matches any selection whose value is not one of values.
func SelectionExcept(values ...string) Matcher {
	return Matcher{
		desc: "any except " + strings.Join(values, ","),
		fn: func(ev domain.Event) bool {
			return ev.Kind == domain.EventSelection && !slices.Contains(values, ev.Value)
		},
	}
}

// Kind matches every event of kind k.
func Kind(k domain.EventKind) Matcher {
	return Matcher{
		desc: string(k),
		fn: func(ev domain.Event) bool {
			return ev.Kind == k
		},
	}
}

// Text matches free text.
func Text() Matcher { return Kind(domain.EventText) }

// Contact matches a shared contact.
func Contact() Matcher { return Kind(domain.EventContact) }

// Location matches a shared location.
func Location() Matcher { return Kind(domain.EventLocation) }

// AnyOf matches when at least one of ms matches.
func AnyOf(ms ...Matcher) Matcher {
	descs := make([]string, len(ms))
	for i, m := range ms {
		descs[i] = m.desc
	}
	return Matcher{
		desc: strings.Join(descs, " | "),
		fn: func(ev domain.Event) bool {
			for _, m := range ms {
				if m.Match(ev) {
					return true
				}
			}
			return false
		},
	}
}
