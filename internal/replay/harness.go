package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/danielpatrickdp/rupture-state/internal/scenario"
	"github.com/danielpatrickdp/rupture-state/internal/sim"
	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region types

// Mismatch describes one field of one record that differs from the fixture.
type Mismatch struct {
	Index    int    `json:"index"`
	T        int    `json:"t"`
	Agent    string `json:"agent"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("record %d (t=%d agent=%s) %s: expected %s, got %s",
		m.Index, m.T, m.Agent, m.Field, m.Expected, m.Actual)
}

// Result captures the outcome of replaying a fixture.
type Result struct {
	Actual     []state.StepRecord
	Mismatches []Mismatch
	Summary    sim.Summary
}

// Passed reports whether the replay reproduced the fixture.
func (r Result) Passed() bool { return len(r.Mismatches) == 0 }

// #endregion types

// #region replay

// Replay re-runs the fixture's scenario and compares the trace with the
// expected records.
func Replay(ctx context.Context, f *Fixture, opts ...sim.Option) (Result, error) {
	b, err := scenario.Build(ctx, f.Scenario)
	if err != nil {
		return Result{}, fmt.Errorf("build scenario: %w", err)
	}
	res, err := sim.Run(b.States, b.Signals, b.Steps, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("run scenario: %w", err)
	}
	tol := f.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return Result{
		Actual:     res.Records,
		Mismatches: Compare(f.Expected, res.Records, tol),
		Summary:    sim.Summarize(res),
	}, nil
}

// Compare reports every difference between expected and actual. Floats
// match within tol; everything else must be equal.
func Compare(expected, actual []state.StepRecord, tol float64) []Mismatch {
	var out []Mismatch
	if len(expected) != len(actual) {
		out = append(out, Mismatch{
			Index:    -1,
			Field:    "length",
			Expected: fmt.Sprint(len(expected)),
			Actual:   fmt.Sprint(len(actual)),
		})
	}
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		e, a := expected[i], actual[i]
		add := func(field string, ev, av any) {
			out = append(out, Mismatch{
				Index: i, T: e.T, Agent: e.Agent, Field: field,
				Expected: fmt.Sprint(ev), Actual: fmt.Sprint(av),
			})
		}
		if e.T != a.T {
			add("t", e.T, a.T)
		}
		if e.Agent != a.Agent {
			add("agent", e.Agent, a.Agent)
		}
		if e.Ruptured != a.Ruptured {
			add("ruptured", e.Ruptured, a.Ruptured)
		}
		if e.CollapseLabel != a.CollapseLabel {
			add("collapse_label", e.CollapseLabel, a.CollapseLabel)
		}
		if e.Stochastic != a.Stochastic {
			add("stochastic", e.Stochastic, a.Stochastic)
		}
		// fixtures written before reasons were recorded leave it empty
		if e.Reason != "" && e.Reason != a.Reason {
			add("reason", e.Reason, a.Reason)
		}
		floats := []struct {
			name   string
			ev, av float64
		}{
			{"r", e.R, a.R},
			{"prior", e.Prior, a.Prior},
			{"delta", e.Delta, a.Delta},
			{"theta", e.Theta, a.Theta},
			{"margin", e.Margin, a.Margin},
			{"probability", e.Probability, a.Probability},
			{"v", e.V, a.V},
			{"e", e.E, a.E},
		}
		for _, f := range floats {
			if math.Abs(f.ev-f.av) > tol {
				add(f.name, f.ev, f.av)
			}
		}
	}
	return out
}

// #endregion replay
