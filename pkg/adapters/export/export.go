// Package export hands submitted records to downstream systems.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
)

// Log writes every export as a structured log line.
type Log struct {
	Logger *slog.Logger
}

// Export logs e at info level.
func (l Log) Export(ctx context.Context, e domain.Export) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, len(e.Fields))
	for k, v := range e.Fields {
		attrs = append(attrs, slog.String(k, v))
	}
	logger.InfoContext(ctx, "Record submitted",
		"export_id", e.ID,
		"party_id", e.PartyID,
		"subject", e.Subject,
		"submitted_at", e.SubmittedAt,
		slog.Group("fields", attrs...),
	)
	return nil
}

// Webhook POSTs each export as JSON.
type Webhook struct {
	URL    string
	Header http.Header
	HTTP   *http.Client
}

// Export sends e. Any non-2xx response is an error; nothing is retried.
func (w *Webhook) Export(ctx context.Context, e domain.Export) error {
	if w.URL == "" {
		return errors.New("missing webhook url")
	}
	client := w.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, vs := range w.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", e.ID)

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", res.Status)
	}
	return nil
}

// Multi fans an export out to every exporter and joins their errors.
type Multi []ports.Exporter

// Export calls every exporter, even after a failure.
func (m Multi) Export(ctx context.Context, e domain.Export) error {
	var errs []error
	for _, x := range m {
		if err := x.Export(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
