package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielpatrickdp/rupture-state/internal/drift"
	"github.com/danielpatrickdp/rupture-state/internal/scenario"
	"github.com/danielpatrickdp/rupture-state/internal/sim"
	"github.com/danielpatrickdp/rupture-state/internal/telemetry"
	"github.com/danielpatrickdp/rupture-state/internal/tracestore"
)

// #region run

// runOutput is the result of one scenario run as printed by simulate.
type runOutput struct {
	RunID    string         `json:"run_id,omitempty"`
	Scenario string         `json:"scenario"`
	Mode     string         `json:"signal_mode"`
	Summary  sim.Summary    `json:"summary"`
	Topology drift.Topology `json:"topology"`
}

// runScenario builds and runs sc inside a span.
func runScenario(ctx context.Context, sc scenario.Scenario, opts ...sim.Option) (scenario.Built, sim.Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "scenario.run",
		attribute.String("scenario", sc.Name),
		attribute.Int("agents", len(sc.Agents)),
	)
	defer span.End()

	b, err := scenario.Build(ctx, sc)
	if err != nil {
		telemetry.RecordError(span, err)
		return scenario.Built{}, sim.Result{}, err
	}
	res, err := sim.Run(b.States, b.Signals, b.Steps, opts...)
	if err != nil {
		telemetry.RecordError(span, err)
		return b, res, err
	}
	span.SetAttributes(
		attribute.Int("steps", res.Steps),
		attribute.Int("ruptures", res.Trace().Ruptures()),
	)
	return b, res, nil
}

// topology summarizes res as a drift field.
func topology(res sim.Result) drift.Topology {
	cfg := drift.DefaultConfig()
	f := drift.BuildField(res.Records, true)
	return drift.Describe(f, drift.Zones(f, cfg.Margin), cfg)
}

// saveRun stores res with sc encoded as the run configuration so the run
// can later be exported as a replay fixture.
func saveRun(store *tracestore.Store, sc scenario.Scenario, seed uint64, res sim.Result) (tracestore.Run, error) {
	scJSON, err := json.Marshal(sc)
	if err != nil {
		return tracestore.Run{}, fmt.Errorf("encode scenario: %w", err)
	}
	summary := sim.Summarize(res)
	sumJSON, err := json.Marshal(summary)
	if err != nil {
		return tracestore.Run{}, fmt.Errorf("encode summary: %w", err)
	}
	run, err := store.SaveRun(tracestore.Run{
		Name:        sc.Name,
		Seed:        seed,
		Agents:      summary.Agents,
		Steps:       res.Steps,
		ConfigJSON:  string(scJSON),
		SummaryJSON: string(sumJSON),
	}, res.Records)
	if err != nil {
		return tracestore.Run{}, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}

// #endregion run
