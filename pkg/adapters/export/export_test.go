package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/adapters/export"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() domain.Export {
	return domain.Export{
		ID:          "e-1",
		PartyID:     "42",
		Subject:     "self",
		SubmittedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Fields:      map[string]string{"Name": "Thandi", "Age": "34"},
	}
}

func TestWebhook_PostsJSON(t *testing.T) {
	var got domain.Export
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	wh := &export.Webhook{URL: srv.URL, Header: http.Header{"Authorization": {"Bearer t"}}}
	require.NoError(t, wh.Export(context.Background(), sample()))

	assert.Equal(t, sample(), got)
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "e-1", headers.Get("Idempotency-Key"))
	assert.Equal(t, "Bearer t", headers.Get("Authorization"))
}

func TestWebhook_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := (&export.Webhook{URL: srv.URL}).Export(context.Background(), sample())
	assert.ErrorContains(t, err, "502")
}

func TestWebhook_MissingURL(t *testing.T) {
	assert.Error(t, (&export.Webhook{}).Export(context.Background(), sample()))
}

func TestLog_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelInfo, true)

	require.NoError(t, export.Log{Logger: logger}.Export(context.Background(), sample()))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "e-1", line["export_id"])
	assert.Equal(t, map[string]any{"Name": "Thandi", "Age": "34"}, line["fields"])
}

type failing struct{ err error }

func (f failing) Export(context.Context, domain.Export) error { return f.err }

func TestMulti_CallsEveryExporter(t *testing.T) {
	first := errors.New("first")
	var calls int
	counting := exporterFunc(func(context.Context, domain.Export) error { calls++; return nil })

	err := export.Multi{failing{first}, counting}.Export(context.Background(), sample())
	assert.ErrorIs(t, err, first)
	assert.Equal(t, 1, calls)
}

type exporterFunc func(context.Context, domain.Export) error

func (f exporterFunc) Export(ctx context.Context, e domain.Export) error { return f(ctx, e) }

var _ ports.Exporter = export.Multi{}
