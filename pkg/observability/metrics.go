package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine counters.
type Metrics struct {
	SessionsStarted prometheus.Counter
	LevelVisits     *prometheus.CounterVec
	LevelMissing    *prometheus.CounterVec
	IntakeSteps     *prometheus.CounterVec
	Unrecognized    *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_sessions_started_total",
			Help: "Total number of chat sessions started",
		}),
		LevelVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_level_visits_total",
			Help: "Total number of level visits",
		}, []string{"level_id"}),
		LevelMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_level_missing_total",
			Help: "Navigations to levels absent from the content tree",
		}, []string{"level_id"}),
		IntakeSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_intake_steps_total",
			Help: "Intake attempts by stage and outcome",
		}, []string{"stage", "outcome"}),
		Unrecognized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_unrecognized_input_total",
			Help: "Free-text inputs that matched no option",
		}, []string{"level_id"}),
	}
	if reg != nil {
		reg.MustRegister(m.SessionsStarted, m.LevelVisits, m.LevelMissing, m.IntakeSteps, m.Unrecognized)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.EventBase) {
			m.SessionsStarted.Inc()
		},
		OnIntakeAdvance: func(ctx context.Context, e *domain.IntakeEvent) {
			outcome := "rejected"
			if e.Accepted {
				outcome = "accepted"
			}
			m.IntakeSteps.WithLabelValues(string(e.From), outcome).Inc()
		},
		OnLevelEnter: func(ctx context.Context, e *domain.LevelEvent) {
			m.LevelVisits.WithLabelValues(e.LevelID).Inc()
		},
		OnLevelMissing: func(ctx context.Context, e *domain.LevelEvent) {
			m.LevelMissing.WithLabelValues(e.LevelID).Inc()
		},
		OnUnrecognized: func(ctx context.Context, e *domain.InputEvent) {
			m.Unrecognized.WithLabelValues(e.LevelID).Inc()
		},
	}
}
