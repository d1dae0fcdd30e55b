// Package threshold provides the rupture threshold role Θ.
//
// A threshold depends only on the agent's misalignment memory, its
// configuration and, for coupled variants, same-step peer values. Stochastic
// variants draw exclusively from the random source carried in Input.
package threshold

import (
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region input
// Input carries everything a threshold may read for one step.
type Input struct {
	E      float64
	Config core.Config
	// Peers is the same-step peer group (including the agent itself).
	// Only E and Delta are populated while thresholds are being resolved.
	Peers *core.PeerGroup
	Rand  *rand.Rand
}

// #endregion input

// #region function
// Function computes Θ for one step.
type Function interface {
	Threshold(in Input) (float64, error)
}

// Func adapts an ordinary function to the Function role.
type Func func(in Input) (float64, error)

// Threshold calls f.
func (f Func) Threshold(in Input) (float64, error) {
	return f(in)
}

// Fixed returns a Function that always yields theta.
func Fixed(theta float64) Function {
	return Func(func(Input) (float64, error) { return theta, nil })
}

// #endregion function

// #region linear-growth
// LinearGrowth is Θ = theta0 + theta_rate·E.
type LinearGrowth struct{}

// Name returns "linear_growth".
func (LinearGrowth) Name() string { return "linear_growth" }

// RequiredKeys lists the config keys the variant reads.
func (LinearGrowth) RequiredKeys() []string {
	return []string{core.KeyTheta0, core.KeyThetaRate}
}

// Threshold returns theta0 + theta_rate·E.
func (LinearGrowth) Threshold(in Input) (float64, error) {
	return linear(in.E, in.Config), nil
}

func linear(e float64, cfg core.Config) float64 {
	return cfg.Float(core.KeyTheta0) + cfg.Float(core.KeyThetaRate)*e
}

// #endregion linear-growth

// #region saturating
// Saturating is Θ = theta0 + theta_rate·E / (1 + theta_saturation·E).
// It approaches theta0 + theta_rate/theta_saturation as E grows.
type Saturating struct{}

// Name returns "saturating".
func (Saturating) Name() string { return "saturating" }

// RequiredKeys lists the config keys the variant reads.
func (Saturating) RequiredKeys() []string {
	return []string{core.KeyTheta0, core.KeyThetaRate, core.KeyThetaSaturation}
}

// Threshold returns theta0 + theta_rate·E / (1 + theta_saturation·E).
func (Saturating) Threshold(in Input) (float64, error) {
	cfg := in.Config
	e := in.E
	return cfg.Float(core.KeyTheta0) + cfg.Float(core.KeyThetaRate)*e/(1+cfg.Float(core.KeyThetaSaturation)*e), nil
}

// Asymptote returns the limit of the saturating threshold as E → ∞.
// It returns +Inf when theta_saturation is zero.
func (Saturating) Asymptote(cfg core.Config) float64 {
	b := cfg.Float(core.KeyThetaSaturation)
	if b == 0 {
		return math.Inf(1)
	}
	return cfg.Float(core.KeyTheta0) + cfg.Float(core.KeyThetaRate)/b
}

// #endregion saturating

// #region stochastic
// Stochastic is Θ = theta0 + theta_rate·E + N(0, theta_sigma²).
type Stochastic struct{}

// Name returns "stochastic".
func (Stochastic) Name() string { return "stochastic" }

// RequiredKeys lists the config keys the variant reads.
func (Stochastic) RequiredKeys() []string {
	return []string{core.KeyTheta0, core.KeyThetaRate, core.KeyThetaSigma}
}

// Threshold perturbs the linear threshold with Gaussian noise from in.Rand.
func (Stochastic) Threshold(in Input) (float64, error) {
	if in.Rand == nil {
		return 0, &core.ConfigError{Variant: "stochastic", Key: "rand", Reason: "random source required"}
	}
	noise := in.Rand.NormFloat64() * in.Config.Float(core.KeyThetaSigma)
	return linear(in.E, in.Config) + noise, nil
}

// #endregion stochastic

// #region peer-coupled
// PeerCoupled is Θ = theta0 + theta_rate·E + peer_weight·mean(peer E).
// It reads only phase-one peer values, so no peer's same-step collapse can
// reach it.
type PeerCoupled struct{}

// Name returns "peer_coupled".
func (PeerCoupled) Name() string { return "peer_coupled" }

// RequiredKeys lists the config keys the variant reads.
func (PeerCoupled) RequiredKeys() []string {
	return []string{core.KeyTheta0, core.KeyThetaRate, core.KeyPeerWeight}
}

// Threshold adds peer_weight times the mean peer memory to the linear threshold.
func (PeerCoupled) Threshold(in Input) (float64, error) {
	meanE, err := in.Peers.MeanE()
	if err != nil {
		return 0, err
	}
	return linear(in.E, in.Config) + in.Config.Float(core.KeyPeerWeight)*meanE, nil
}

// #endregion peer-coupled
