// Package state implements the epistemic state and its step transition.
//
// A State is a value. Step confronts it with one signal and returns the
// next State together with an immutable StepRecord; the receiver is never
// modified, so a failed step leaves the caller holding the unchanged state.
// Multi-agent drivers use the two-phase Observe / Pending API so that every
// peer's threshold is resolved before any peer collapses.
package state

import (
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region constructor
// New builds a state at belief v0 with memory e0. Every role must be set
// and every built-in role's required keys must be present in cfg, so
// configuration problems surface here rather than mid-simulation.
func New(v0, e0 float64, cfg core.Config, ops Operators, opts ...Option) (State, error) {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if !core.IsFinite(v0) {
		return State{}, &core.ConfigError{Reason: fmt.Sprintf("initial belief %v is not finite", v0)}
	}
	if !core.IsFinite(e0) || e0 < 0 {
		return State{}, &core.ConfigError{Reason: fmt.Sprintf("initial memory %v must be finite and non-negative", e0)}
	}
	if err := validate(cfg, ops); err != nil {
		return State{}, err
	}
	return State{
		v: v0, e: e0,
		v0: v0, e0: e0,
		cfg:  cfg,
		ops:  ops,
		name: o.name,
		seed: o.seed,
		src:  *rand.NewPCG(o.seed, o.seed),
	}, nil
}

func validate(cfg core.Config, ops Operators) error {
	switch {
	case ops.Realign == nil:
		return &core.ConfigError{Variant: "realign", Reason: "operator required"}
	case ops.Threshold == nil:
		return &core.ConfigError{Variant: "threshold", Reason: "function required"}
	case ops.Rupture == nil:
		return &core.ConfigError{Variant: "rupture", Reason: "policy required"}
	case ops.Collapse == nil:
		return &core.ConfigError{Variant: "collapse", Reason: "model required"}
	}
	if err := cfg.Require("state", core.KeyMemoryRate); err != nil {
		return err
	}
	if cfg.Float(core.KeyMemoryRate) < 0 {
		return &core.ConfigError{Variant: "state", Key: core.KeyMemoryRate, Reason: "must be non-negative"}
	}
	for _, role := range []any{ops.Realign, ops.Threshold, ops.Rupture, ops.Collapse} {
		if err := core.CheckVariant(role, cfg); err != nil {
			return err
		}
	}
	return nil
}

// #endregion constructor

// #region accessors
func (s State) V() float64           { return s.v }
func (s State) E() float64           { return s.e }
func (s State) V0() float64          { return s.v0 }
func (s State) E0() float64          { return s.e0 }
func (s State) T() int               { return s.t }
func (s State) Name() string         { return s.name }
func (s State) Seed() uint64         { return s.seed }
func (s State) Config() core.Config  { return s.cfg }
func (s State) Operators() Operators { return s.ops }

// Valid reports whether s was built by New.
func (s State) Valid() bool {
	return s.ops.Realign != nil && s.ops.Threshold != nil && s.ops.Rupture != nil && s.ops.Collapse != nil
}

// #endregion accessors

// #region replace
// WithConfig returns a copy of s using cfg. The new config is validated
// against the state's roles; s is unchanged on error.
func (s State) WithConfig(cfg core.Config) (State, error) {
	if err := validate(cfg, s.ops); err != nil {
		return s, err
	}
	s.cfg = cfg
	return s, nil
}

// Restart returns a copy of s at belief v0 and memory e0 with time reset
// to zero. The random source is reseeded from the construction seed.
func (s State) Restart(v0, e0 float64) (State, error) {
	if !core.IsFinite(v0) {
		return s, &core.ConfigError{Reason: fmt.Sprintf("initial belief %v is not finite", v0)}
	}
	if !core.IsFinite(e0) || e0 < 0 {
		return s, &core.ConfigError{Reason: fmt.Sprintf("initial memory %v must be finite and non-negative", e0)}
	}
	s.v, s.e, s.v0, s.e0, s.t = v0, e0, v0, e0, 0
	s.src = *rand.NewPCG(s.seed, s.seed)
	return s, nil
}

// #endregion replace
