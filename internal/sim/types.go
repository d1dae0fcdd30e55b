package sim

import (
	"log/slog"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region observer
// Observer is notified of every committed step record in trace order.
type Observer interface {
	ObserveStep(rec state.StepRecord)
}

// ObserverFunc adapts an ordinary function to Observer.
type ObserverFunc func(rec state.StepRecord)

// ObserveStep calls f.
func (f ObserverFunc) ObserveStep(rec state.StepRecord) { f(rec) }

// #endregion observer

// #region options
type runConfig struct {
	observers []Observer
	logger    *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

// WithObserver adds an observer. Observers see records only after the
// whole step has committed.
func WithObserver(o Observer) Option {
	return func(c *runConfig) { c.observers = append(c.observers, o) }
}

// WithLogger sets the logger used for per-step debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// #endregion options

// #region result
// Result is the outcome of a run. Records hold every agent's step records
// in (step, agent) order. Final holds each agent's state after the last
// fully committed step.
type Result struct {
	Records []state.StepRecord
	Final   []state.State
	Steps   int
}

// Trace returns the records as an append-only trace.
func (r Result) Trace() *state.Trace {
	return state.NewTrace(r.Records)
}

// Summary provides aggregate stats from a run.
type Summary struct {
	Agents       int            `json:"agents"`
	Steps        int            `json:"steps"`
	Records      int            `json:"records"`
	Ruptures     int            `json:"ruptures"`
	FirstRupture int            `json:"first_rupture"` // run step index, -1 when no agent ruptured
	Collapses    map[string]int `json:"collapses"`
	PerAgent     map[string]int `json:"ruptures_per_agent"`
	MeanV        float64        `json:"mean_v"`
	MeanE        float64        `json:"mean_e"`
}

// #endregion result
