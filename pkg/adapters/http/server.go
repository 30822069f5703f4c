// Package http exposes the webhook, session administration, health and
// metrics endpoints over a chi router.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/dispatch"
	"github.com/botarmy/switchboard/pkg/domain"
)

// SecretHeader carries the secret Telegram echoes on every webhook call.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Router accepts updates for processing.
type Router interface {
	Route(ctx context.Context, u domain.Update) error
}

// Sessions is the session administration surface. *session.Manager implements it.
type Sessions interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, partyID string) (*domain.Session, error)
	Delete(ctx context.Context, partyID string) error
}

// DecodeFunc reads one update from a webhook request.
// It reports false for updates that should be acknowledged and dropped.
type DecodeFunc func(r *http.Request) (domain.Update, bool, error)

// Config wires the handler. Nil parts leave their routes unmounted.
type Config struct {
	Router        Router
	Decode        DecodeFunc
	WebhookSecret string

	Sessions Sessions
	Health   func(ctx context.Context) error
	Metrics  http.Handler
	Logger   *slog.Logger
}

type server struct {
	cfg    Config
	logger *slog.Logger
}

// NewHandler builds the HTTP handler.
func NewHandler(cfg Config) http.Handler {
	s := &server{cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	if cfg.Router != nil && cfg.Decode != nil {
		r.Post("/telegram/webhook", s.webhook)
	}
	if cfg.Sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Get("/{id}", s.getSession)
			r.Delete("/{id}", s.deleteSession)
		})
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	return r
}

func (s *server) webhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.WebhookSecret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.WebhookSecret)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	u, ok, err := s.cfg.Decode(r)
	if err != nil {
		s.logger.Warn("Webhook: invalid update", "err", err)
		http.Error(w, "Invalid update", http.StatusBadRequest)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.cfg.Router.Route(r.Context(), u); err != nil {
		if errors.Is(err, dispatch.ErrRouterClosed) {
			http.Error(w, "Shutting down", http.StatusServiceUnavailable)
			return
		}
		s.logger.Error("Webhook: route failed", "party_id", u.Party, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Health != nil {
		if err := s.cfg.Health(r.Context()); err != nil {
			s.logger.Warn("Health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.cfg.Sessions.List(r.Context())
	if err != nil {
		s.logger.Error("List sessions failed", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.cfg.Sessions.Load(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Load session failed", "party_id", id, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.cfg.Sessions.Delete(r.Context(), id); err != nil {
		s.logger.Error("Delete session failed", "party_id", id, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
