// Package metrics exposes step records as Prometheus metrics. A Collector
// observes a simulation through sim.WithObserver.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region collector

// Collector records per-agent step metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	steps    *prometheus.CounterVec
	ruptures *prometheus.CounterVec
	delta    *prometheus.HistogramVec
	margin   *prometheus.HistogramVec
	memory   *prometheus.GaugeVec
	belief   *prometheus.GaugeVec
}

// NewCollector registers the rupture metrics on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		// steps counts committed steps per agent
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rupture_steps_total",
			Help: "Committed steps by agent",
		}, []string{"agent"}),
		ruptures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rupture_ruptures_total",
			Help: "Ruptures by agent and collapse label",
		}, []string{"agent", "label"}),
		delta: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rupture_distortion",
			Help:    "Observed distortion per step",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"agent"}),
		margin: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rupture_margin",
			Help:    "Distortion minus threshold per step",
			Buckets: prometheus.LinearBuckets(-2, 0.25, 17),
		}, []string{"agent"}),
		memory: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rupture_memory",
			Help: "Misalignment memory after the last committed step",
		}, []string{"agent"}),
		belief: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rupture_belief",
			Help: "Belief after the last committed step",
		}, []string{"agent"}),
	}
}

// ObserveStep records one committed step.
func (c *Collector) ObserveStep(rec state.StepRecord) {
	c.steps.WithLabelValues(rec.Agent).Inc()
	c.delta.WithLabelValues(rec.Agent).Observe(rec.Delta)
	c.margin.WithLabelValues(rec.Agent).Observe(rec.Margin)
	c.memory.WithLabelValues(rec.Agent).Set(rec.E)
	c.belief.WithLabelValues(rec.Agent).Set(rec.V)
	if rec.Ruptured {
		c.ruptures.WithLabelValues(rec.Agent, rec.CollapseLabel).Inc()
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// #endregion collector
