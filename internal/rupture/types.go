package rupture

import (
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region input
// Input carries everything a rupture policy may read for one step.
type Input struct {
	Delta  float64
	Theta  float64
	E      float64
	Config core.Config
	// Peers is the sealed same-step peer group (including the agent).
	Peers *core.PeerGroup
	Rand  *rand.Rand
}

// #endregion input

// #region verdict
// Verdict records what a policy decided. Margin is always Δ − Θ as seen by
// the policy. Probability is meaningful only when Stochastic is set.
type Verdict struct {
	Rupture     bool
	Margin      float64
	Probability float64
	Stochastic  bool
	Reason      string
}

// #endregion verdict

// #region policy
// Policy combines distortion and threshold into a rupture verdict.
type Policy interface {
	Decide(in Input) (Verdict, error)
}

// Func adapts an ordinary function to the Policy role.
type Func func(in Input) (Verdict, error)

// Decide calls f.
func (f Func) Decide(in Input) (Verdict, error) {
	return f(in)
}

// #endregion policy
