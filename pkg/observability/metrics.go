package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors.
type Metrics struct {
	Steps       *prometheus.CounterVec
	Halts       *prometheus.CounterVec
	Generations *prometheus.CounterVec
	Active      *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_steps_total",
				Help: "Total number of deterministic transitions applied",
			},
			[]string{"machine"},
		),
		Halts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_halts_total",
				Help: "Runs and searches that reached a final status",
			},
			[]string{"machine", "status"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_generations_total",
				Help: "Total number of nondeterministic generations computed",
			},
			[]string{"machine"},
		),
		Active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "turing_active_configurations",
				Help: "Live configurations after the latest generation of a search",
			},
			[]string{"machine"},
		),
	}
	for _, c := range []prometheus.Collector{m.Steps, m.Halts, m.Generations, m.Active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			if e.Result.NoOp {
				return
			}
			m.Steps.WithLabelValues(e.Machine).Inc()
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			m.Halts.WithLabelValues(e.Machine, string(e.Status)).Inc()
		},
		OnGeneration: func(_ context.Context, e *domain.GenerationEvent) {
			if e.Result.NoOp {
				return
			}
			m.Generations.WithLabelValues(e.Machine).Inc()
			m.Active.WithLabelValues(e.Machine).Set(float64(e.Result.Active))
		},
	}
}

// LogHooks logs halts at info level and individual steps at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"machine", e.Machine,
				"step", e.Result.Step,
				"from", e.Result.From,
				"to", e.Result.To,
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.InfoContext(ctx, "halt",
				"machine", e.Machine,
				"status", e.Status,
				"steps", e.Steps,
			)
		},
		OnGeneration: func(ctx context.Context, e *domain.GenerationEvent) {
			logger.DebugContext(ctx, "generation",
				"machine", e.Machine,
				"generation", e.Result.Generation,
				"active", e.Result.Active,
				"died", e.Result.Died,
			)
		},
	}
}
