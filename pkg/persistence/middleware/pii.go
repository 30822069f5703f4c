package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
)

// Mask replaces redacted answers.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks submitted answers whose field ID matches any pattern.
// In-progress records are left alone; the conversation still needs them.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, partyID string, s *domain.Session) error {
	if len(m.patterns) == 0 || len(s.Submitted) == 0 {
		return m.next.Save(ctx, partyID, s)
	}

	masked := s.Clone()
	for _, records := range masked.Submitted {
		for _, r := range records {
			m.mask(r)
		}
	}
	return m.next.Save(ctx, partyID, masked)
}

func (m *piiMiddleware) mask(r domain.Record) {
	for id, v := range r {
		if !m.sensitive(id) {
			continue
		}
		r[id] = domain.Value{Kind: v.Kind, Text: Mask}
	}
}

func (m *piiMiddleware) sensitive(fieldID string) bool {
	for _, p := range m.patterns {
		if p.MatchString(fieldID) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, partyID string) (*domain.Session, error) {
	return m.next.Load(ctx, partyID)
}

func (m *piiMiddleware) Delete(ctx context.Context, partyID string) error {
	return m.next.Delete(ctx, partyID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
