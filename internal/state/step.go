package state

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/collapse"
	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/rupture"
	"github.com/danielpatrickdp/rupture-state/internal/threshold"
)

// #region step
// Step confronts s with signal r and returns the next state and the step's
// record. s itself is unchanged, including on error. The peer group for a
// standalone step contains only s, so consensus policies reduce to the
// plain threshold comparison.
func (s State) Step(r float64) (State, StepRecord, error) {
	p, err := s.Observe(r)
	if err != nil {
		return s, StepRecord{}, err
	}
	group := core.NewPeerGroup([]core.Peer{p.Peer()})
	theta, err := p.ResolveThreshold(group)
	if err != nil {
		return s, StepRecord{}, err
	}
	if err := group.SetTheta(0, theta); err != nil {
		return s, StepRecord{}, err
	}
	if err := group.Seal(); err != nil {
		return s, StepRecord{}, err
	}
	if _, err := p.ResolveRupture(group); err != nil {
		return s, StepRecord{}, err
	}
	return p.Commit()
}

// #endregion step

// #region pending
type phase int

const (
	phaseObserved phase = iota
	phaseThreshold
	phaseRupture
	phaseCommitted
)

// ErrOutOfOrder is returned when Pending methods are called out of sequence.
var ErrOutOfOrder = errors.New("pending step: out of order")

// Pending is one agent's in-flight step. Its methods must be called in
// order: ResolveThreshold, ResolveRupture, Commit. The random source is a
// private copy of the state's, so abandoning a Pending leaves the state's
// stream untouched.
type Pending struct {
	prior   State
	r       float64
	delta   float64
	theta   float64
	verdict rupture.Verdict
	phase   phase
	src     rand.PCG
	rng     *rand.Rand
}

// Observe validates r and computes the distortion Δ = |r − V|.
func (s State) Observe(r float64) (*Pending, error) {
	if !s.Valid() {
		return nil, &core.ConfigError{Reason: "state not constructed with New"}
	}
	if !core.IsFinite(r) {
		return nil, &core.InvalidSignalError{Value: r, T: s.t}
	}
	p := &Pending{
		prior: s,
		r:     r,
		delta: core.Distortion(s.v, r),
		src:   s.src,
	}
	p.rng = rand.New(&p.src)
	return p, nil
}

// Delta returns the observed distortion.
func (p *Pending) Delta() float64 { return p.delta }

// Theta returns the resolved threshold, or 0 before ResolveThreshold.
func (p *Pending) Theta() float64 { return p.theta }

// Peer returns the phase-one snapshot used to build a peer group.
func (p *Pending) Peer() core.Peer {
	return core.Peer{E: p.prior.e, Delta: p.delta}
}

// ResolveThreshold computes Θ against the same-step peer group.
func (p *Pending) ResolveThreshold(group *core.PeerGroup) (float64, error) {
	if p.phase != phaseObserved {
		return 0, fmt.Errorf("resolve threshold: %w", ErrOutOfOrder)
	}
	s := p.prior
	theta, err := s.ops.Threshold.Threshold(threshold.Input{
		E:      s.e,
		Config: s.cfg,
		Peers:  group,
		Rand:   p.rng,
	})
	if err != nil {
		return 0, fmt.Errorf("threshold at t=%d: %w", s.t, err)
	}
	if !core.IsFinite(theta) {
		return 0, &core.ConfigError{Variant: "threshold", Reason: fmt.Sprintf("produced non-finite value %v", theta)}
	}
	p.theta = theta
	p.phase = phaseThreshold
	return theta, nil
}

// ResolveRupture applies the rupture policy. group must be sealed when the
// policy reads peer thresholds.
func (p *Pending) ResolveRupture(group *core.PeerGroup) (rupture.Verdict, error) {
	if p.phase != phaseThreshold {
		return rupture.Verdict{}, fmt.Errorf("resolve rupture: %w", ErrOutOfOrder)
	}
	s := p.prior
	v, err := s.ops.Rupture.Decide(rupture.Input{
		Delta:  p.delta,
		Theta:  p.theta,
		E:      s.e,
		Config: s.cfg,
		Peers:  group,
		Rand:   p.rng,
	})
	if err != nil {
		return rupture.Verdict{}, fmt.Errorf("rupture at t=%d: %w", s.t, err)
	}
	p.verdict = v
	p.phase = phaseRupture
	return v, nil
}

// Commit applies collapse or realignment and returns the next state and
// its record. On error the prior state is returned.
func (p *Pending) Commit() (State, StepRecord, error) {
	if p.phase != phaseRupture {
		return p.prior, StepRecord{}, fmt.Errorf("commit: %w", ErrOutOfOrder)
	}
	s := p.prior
	next := s
	rec := StepRecord{
		T:           s.t,
		Agent:       s.name,
		R:           p.r,
		Prior:       s.v,
		Delta:       p.delta,
		Theta:       p.theta,
		Ruptured:    p.verdict.Rupture,
		Margin:      p.verdict.Margin,
		Probability: p.verdict.Probability,
		Stochastic:  p.verdict.Stochastic,
		Reason:      p.verdict.Reason,
	}

	if p.verdict.Rupture {
		out, err := s.ops.Collapse.Collapse(collapse.Input{
			V: s.v, E: s.e, R: p.r,
			V0: s.v0, E0: s.e0,
			Config: s.cfg,
			Rand:   p.rng,
		})
		if err != nil {
			return s, StepRecord{}, fmt.Errorf("collapse at t=%d: %w", s.t, err)
		}
		if err := checkOutcome(out); err != nil {
			return s, StepRecord{}, err
		}
		next.v, next.e = out.V, out.E
		rec.CollapseLabel = out.Label
	} else {
		v := s.ops.Realign.Realign(s.v, p.r, s.e, s.cfg)
		if !core.IsFinite(v) {
			return s, StepRecord{}, &core.ConfigError{Variant: "realign", Reason: fmt.Sprintf("produced non-finite belief %v", v)}
		}
		next.v = v
		next.e = s.e + s.cfg.Float(core.KeyMemoryRate)*p.delta
	}

	next.t = s.t + 1
	next.src = p.src
	rec.V, rec.E = next.v, next.e
	p.phase = phaseCommitted
	return next, rec, nil
}

func checkOutcome(out collapse.Outcome) error {
	switch {
	case out.Label == "":
		return &core.ConfigError{Variant: "collapse", Reason: "empty collapse label"}
	case !core.IsFinite(out.V):
		return &core.ConfigError{Variant: "collapse", Reason: fmt.Sprintf("produced non-finite belief %v", out.V)}
	case !core.IsFinite(out.E) || out.E < 0:
		return &core.ConfigError{Variant: "collapse", Reason: fmt.Sprintf("produced invalid memory %v", out.E)}
	}
	return nil
}

// #endregion pending
