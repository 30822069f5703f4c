package observability

import (
	"context"
	"log/slog"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the conversation collectors.
type Metrics struct {
	FramePushes    *prometheus.CounterVec
	FramePops      *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	Ignored        *prometheus.CounterVec
	SessionsEnded  *prometheus.CounterVec
	SessionsActive prometheus.Gauge
	Exports        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramePushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "frame_pushes_total",
			Help:      "Frames pushed onto a conversation stack.",
		}, []string{"frame"}),
		FramePops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "frame_pops_total",
			Help:      "Frames popped off a conversation stack, by terminal signal.",
		}, []string{"frame", "signal"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "transitions_total",
			Help:      "State changes within a frame.",
		}, []string{"frame", "to"}),
		Ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "events_ignored_total",
			Help:      "Events no candidate accepted.",
		}, []string{"frame", "state", "kind"}),
		SessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "sessions_ended_total",
			Help:      "Conversations whose stack emptied.",
		}, []string{"signal"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "switchboard",
			Name:      "sessions_active",
			Help:      "Conversations started and not yet ended by this process.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "exports_total",
			Help:      "Submitted records handed to the exporter.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.FramePushes, m.FramePops, m.Transitions, m.Ignored, m.SessionsEnded, m.SessionsActive, m.Exports)
	return m
}

// Hooks returns lifecycle hooks that update m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFramePush: func(_ context.Context, e *domain.FrameEvent) {
			m.FramePushes.WithLabelValues(e.Frame).Inc()
			if e.Depth == 1 {
				m.SessionsActive.Inc()
			}
		},
		OnFramePop: func(_ context.Context, e *domain.FrameEvent) {
			m.FramePops.WithLabelValues(e.Frame, string(e.Signal)).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.FrameEvent) {
			m.Transitions.WithLabelValues(e.Frame, e.To).Inc()
		},
		OnIgnored: func(_ context.Context, e *domain.InputEvent) {
			m.Ignored.WithLabelValues(e.Frame, e.State, string(e.Kind)).Inc()
		},
		OnSessionEnd: func(_ context.Context, e *domain.FrameEvent) {
			m.SessionsEnded.WithLabelValues(string(e.Signal)).Inc()
			m.SessionsActive.Dec()
		},
		OnExport: func(_ context.Context, e *domain.ExportEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Exports.WithLabelValues(result).Inc()
		},
	}
}

// LogHooks returns lifecycle hooks that log conversation milestones at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFramePush: func(ctx context.Context, e *domain.FrameEvent) {
			logger.InfoContext(ctx, "frame_push", "party_id", e.PartyID, "frame", e.Frame, "state", e.To, "depth", e.Depth)
		},
		OnFramePop: func(ctx context.Context, e *domain.FrameEvent) {
			logger.InfoContext(ctx, "frame_pop", "party_id", e.PartyID, "frame", e.Frame, "signal", e.Signal, "depth", e.Depth)
		},
		OnSessionEnd: func(ctx context.Context, e *domain.FrameEvent) {
			logger.InfoContext(ctx, "session_end", "party_id", e.PartyID, "signal", e.Signal)
		},
		OnExport: func(ctx context.Context, e *domain.ExportEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "export_failed", "party_id", e.PartyID, "export_id", e.ExportID, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "export", "party_id", e.PartyID, "export_id", e.ExportID, "fields", e.Fields)
		},
	}
}
