// Package sim drives one or more epistemic states through a signal
// sequence.
//
// Every step runs four barrier phases across all agents: observe, resolve
// thresholds, resolve ruptures, commit. No agent's collapse or realignment
// is visible to any peer until the following step. Any error aborts the
// run at the failing step; nothing from that step is committed.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/logging"
	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region run
// Run steps every state with the same broadcast signal for up to steps
// steps, stopping early when signals is exhausted. On error the returned
// Result holds the records and states of every step that fully committed.
func Run(states []state.State, signals []float64, steps int, opts ...Option) (Result, error) {
	cfg := runConfig{logger: logging.Discard()}
	for _, fn := range opts {
		fn(&cfg)
	}

	if steps < 0 {
		return Result{}, &core.ConfigError{Variant: "sim", Key: "steps", Reason: "must be non-negative"}
	}
	if len(states) == 0 {
		return Result{}, &core.PeerGroupError{Reason: "no states to simulate", Size: 0}
	}

	current := make([]state.State, len(states))
	copy(current, states)
	res := Result{Final: current}

	n := steps
	if len(signals) < n {
		n = len(signals)
	}

	for t := 0; t < n; t++ {
		next, recs, err := StepAll(current, signals[t])
		if err != nil {
			cfg.logger.Warn("simulation aborted", slog.Int("t", t), slog.String("error", err.Error()))
			return res, fmt.Errorf("step %d: %w", t, err)
		}
		for _, rec := range recs {
			if rec.Ruptured {
				cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "rupture", logging.Step(rec)...)
			}
			for _, o := range cfg.observers {
				o.ObserveStep(rec)
			}
		}
		current = next
		res.Final = current
		res.Records = append(res.Records, recs...)
		res.Steps = t + 1
	}

	cfg.logger.Debug("simulation complete",
		slog.Int("agents", len(states)),
		slog.Int("steps", res.Steps),
		slog.Int("records", len(res.Records)),
	)
	return res, nil
}

// RunSingle is Run for one state.
func RunSingle(s state.State, signals []float64, opts ...Option) (Result, error) {
	return Run([]state.State{s}, signals, len(signals), opts...)
}

// #endregion run

// #region step-all
// StepAll advances every state by one step with signal r using barrier
// ordering. The input slice is not modified. Agents without a name are
// recorded by their index.
func StepAll(states []state.State, r float64) ([]state.State, []state.StepRecord, error) {
	if len(states) == 0 {
		return nil, nil, &core.PeerGroupError{Reason: "no states to step", Size: 0}
	}

	// 1. Observe
	pending := make([]*state.Pending, len(states))
	peers := make([]core.Peer, len(states))
	for i, s := range states {
		p, err := s.Observe(r)
		if err != nil {
			return nil, nil, fmt.Errorf("agent %s: %w", agentName(s, i), err)
		}
		pending[i] = p
		peers[i] = p.Peer()
	}
	group := core.NewPeerGroup(peers)

	// 2. Thresholds
	for i, p := range pending {
		theta, err := p.ResolveThreshold(group)
		if err != nil {
			return nil, nil, fmt.Errorf("agent %s: %w", agentName(states[i], i), err)
		}
		if err := group.SetTheta(i, theta); err != nil {
			return nil, nil, err
		}
	}
	if err := group.Seal(); err != nil {
		return nil, nil, err
	}

	// 3. Ruptures
	for i, p := range pending {
		if _, err := p.ResolveRupture(group); err != nil {
			return nil, nil, fmt.Errorf("agent %s: %w", agentName(states[i], i), err)
		}
	}

	// 4. Commit
	next := make([]state.State, len(states))
	recs := make([]state.StepRecord, len(states))
	for i, p := range pending {
		s, rec, err := p.Commit()
		if err != nil {
			return nil, nil, fmt.Errorf("agent %s: %w", agentName(states[i], i), err)
		}
		if rec.Agent == "" {
			rec.Agent = agentName(states[i], i)
		}
		next[i] = s
		recs[i] = rec
	}
	return next, recs, nil
}

func agentName(s state.State, i int) string {
	if s.Name() != "" {
		return s.Name()
	}
	return strconv.Itoa(i)
}

// #endregion step-all

// #region summarize
// Summarize computes aggregate stats from a run result.
func Summarize(res Result) Summary {
	s := Summary{
		Agents:       len(res.Final),
		Steps:        res.Steps,
		Records:      len(res.Records),
		FirstRupture: -1,
		Collapses:    map[string]int{},
		PerAgent:     map[string]int{},
	}
	for i, rec := range res.Records {
		if !rec.Ruptured {
			continue
		}
		s.Ruptures++
		s.Collapses[rec.CollapseLabel]++
		s.PerAgent[rec.Agent]++
		// rec.T is the agent's own clock; records are laid out step-major.
		if s.FirstRupture < 0 && s.Agents > 0 {
			s.FirstRupture = i / s.Agents
		}
	}
	if len(res.Final) > 0 {
		for _, st := range res.Final {
			s.MeanV += st.V()
			s.MeanE += st.E()
		}
		s.MeanV /= float64(len(res.Final))
		s.MeanE /= float64(len(res.Final))
	}
	return s
}

// #endregion summarize
