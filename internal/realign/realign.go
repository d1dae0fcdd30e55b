// Package realign provides the realignment operator role: the ordinary,
// non-rupture update that moves a belief toward the received signal.
//
// Every built-in is pure given (V, R, E, config), holds no state, draws no
// randomness, and is a no-op when R == V.
package realign

import (
	"math"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region operator
// Operator computes the next belief from the current belief v, the signal
// r, the misalignment memory e and the state's configuration.
type Operator interface {
	Realign(v, r, e float64, cfg core.Config) float64
}

// Func adapts an ordinary function to the Operator role.
type Func func(v, r, e float64, cfg core.Config) float64

// Realign calls f.
func (f Func) Realign(v, r, e float64, cfg core.Config) float64 {
	return f(v, r, e, cfg)
}

// #endregion operator

// #region linear
// Linear moves v by a fixed fraction of the gap: V' = V + k·(R − V).
type Linear struct{}

// Name returns "linear".
func (Linear) Name() string { return "linear" }

// RequiredKeys lists the config keys the variant reads.
func (Linear) RequiredKeys() []string { return []string{core.KeyGain} }

// Realign returns V + k·(R − V).
func (Linear) Realign(v, r, _ float64, cfg core.Config) float64 {
	return v + cfg.Float(core.KeyGain)*(r-v)
}

// #endregion linear

// #region bounded
// Bounded saturates the step size: V' = V + tanh(k·(R − V)).
// A single step never moves v by more than 1.
type Bounded struct{}

// Name returns "bounded".
func (Bounded) Name() string { return "bounded" }

// RequiredKeys lists the config keys the variant reads.
func (Bounded) RequiredKeys() []string { return []string{core.KeyGain} }

// Realign returns V + tanh(k·(R − V)).
func (Bounded) Realign(v, r, _ float64, cfg core.Config) float64 {
	return v + math.Tanh(cfg.Float(core.KeyGain)*(r-v))
}

// #endregion bounded

// #region fatigue
// Fatigue shrinks the gain as memory grows:
// k_eff = k / (1 + fatigue·E), V' = V + k_eff·(R − V).
type Fatigue struct{}

// Name returns "fatigue".
func (Fatigue) Name() string { return "fatigue" }

// RequiredKeys lists the config keys the variant reads.
func (Fatigue) RequiredKeys() []string { return []string{core.KeyGain, core.KeyFatigue} }

// Realign scales the gain down by 1 + fatigue·E before moving toward R.
func (Fatigue) Realign(v, r, e float64, cfg core.Config) float64 {
	return v + EffectiveGain(e, cfg)*(r-v)
}

// EffectiveGain returns the fatigue-adjusted gain for memory e.
func EffectiveGain(e float64, cfg core.Config) float64 {
	return cfg.Float(core.KeyGain) / (1 + cfg.Float(core.KeyFatigue)*e)
}

// #endregion fatigue
