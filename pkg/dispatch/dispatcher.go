package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
	"github.com/botarmy/switchboard/pkg/session"
)

// Engine handles one event against one session.
type Engine interface {
	Handle(ctx context.Context, s *domain.Session, ev domain.Event) (domain.Result, error)
}

// Dispatcher runs updates through the engine and delivers the outcome.
type Dispatcher struct {
	engine    Engine
	sessions  *session.Manager
	transport ports.Transport
	exporter  ports.Exporter
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExporter sets where submitted records go. Without one, exports are dropped.
func WithExporter(e ports.Exporter) Option {
	return func(d *Dispatcher) {
		d.exporter = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithLifecycleHooks registers hooks. Only OnExport is fired by the dispatcher.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = d.hooks.Merge(h)
	}
}

// NewDispatcher wires an engine to a session manager and a transport.
func NewDispatcher(engine Engine, sessions *session.Manager, transport ports.Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:    engine,
		sessions:  sessions,
		transport: transport,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one update end to end.
//
// Unclassifiable updates and events for parties without a conversation are
// dropped and reported as an unhandled result. Delivery and export failures are
// logged; the session has already been saved by then.
func (d *Dispatcher) Dispatch(ctx context.Context, u domain.Update) (domain.Result, error) {
	ev, err := Classify(u)
	if err != nil {
		d.logger.Warn("Dropping update", "party_id", u.Party, "err", err)
		return domain.Result{}, nil
	}

	res, err := d.sessions.Apply(ctx, ev.Party, func(ctx context.Context, s *domain.Session) (domain.Result, error) {
		return d.engine.Handle(ctx, s, ev)
	})
	if errors.Is(err, domain.ErrNoActiveConversation) {
		d.logger.Debug("No active conversation", "party_id", ev.Party, "kind", ev.Kind)
		return domain.Result{}, nil
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("party %q: %w", ev.Party, err)
	}

	for _, r := range res.Renders {
		if err := d.transport.Deliver(ctx, ev.Party, r); err != nil {
			d.logger.Warn("Delivery failed", "party_id", ev.Party, "mode", r.Mode, "err", err)
		}
	}
	for _, e := range res.Exports {
		d.export(ctx, e)
	}
	return res, nil
}

func (d *Dispatcher) export(ctx context.Context, e domain.Export) {
	if d.exporter == nil {
		d.logger.Debug("No exporter configured", "party_id", e.PartyID, "export_id", e.ID)
		return
	}
	err := d.exporter.Export(ctx, e)
	if err != nil {
		d.logger.Error("Export failed", "party_id", e.PartyID, "export_id", e.ID, "err", err)
	} else {
		d.logger.Info("Record exported", "party_id", e.PartyID, "export_id", e.ID, "fields", len(e.Fields))
	}
	if d.hooks.OnExport != nil {
		d.hooks.OnExport(ctx, &domain.ExportEvent{
			EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventExported, PartyID: e.PartyID},
			ExportID:  e.ID,
			Fields:    len(e.Fields),
			Err:       err,
		})
	}
}
