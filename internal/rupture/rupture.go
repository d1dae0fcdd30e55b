// Package rupture provides the rupture policy role: the decision that turns
// a step's distortion and threshold into a rupture verdict.
package rupture

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region threshold
// Threshold ruptures iff Δ > Θ. The boundary Δ == Θ is not a rupture.
type Threshold struct{}

// Name returns "threshold".
func (Threshold) Name() string { return "threshold" }

// RequiredKeys lists the config keys the variant reads.
func (Threshold) RequiredKeys() []string { return nil }

// Decide compares Δ with the agent's own Θ.
func (Threshold) Decide(in Input) (Verdict, error) {
	return compare(in.Delta, in.Theta, "theta"), nil
}

func compare(delta, theta float64, against string) Verdict {
	margin := delta - theta
	if delta > theta {
		return Verdict{
			Rupture: true,
			Margin:  margin,
			Reason:  fmt.Sprintf("delta %.4f exceeds %s %.4f", delta, against, theta),
		}
	}
	return Verdict{
		Rupture: false,
		Margin:  margin,
		Reason:  fmt.Sprintf("delta %.4f within %s %.4f", delta, against, theta),
	}
}

// #endregion threshold

// #region stochastic
// Stochastic ruptures with probability sigmoid(slope·(Δ − Θ)), sampled from
// the Input's random source. The probability is returned for the audit trail.
type Stochastic struct{}

// Name returns "stochastic".
func (Stochastic) Name() string { return "stochastic" }

// RequiredKeys lists the config keys the variant reads.
func (Stochastic) RequiredKeys() []string { return []string{core.KeySlope} }

// Decide draws the verdict with probability sigmoid(slope·(Δ − Θ)).
func (Stochastic) Decide(in Input) (Verdict, error) {
	if in.Rand == nil {
		return Verdict{}, &core.ConfigError{Variant: "stochastic", Key: "rand", Reason: "random source required"}
	}
	margin := in.Delta - in.Theta
	p := Sigmoid(in.Config.Float(core.KeySlope) * margin)
	u := in.Rand.Float64()
	return Verdict{
		Rupture:     u < p,
		Margin:      margin,
		Probability: p,
		Stochastic:  true,
		Reason:      fmt.Sprintf("p=%.4f u=%.4f", p, u),
	}, nil
}

// Sigmoid is the logistic function 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// #endregion stochastic

// #region consensus
// Consensus ruptures iff Δ exceeds the mean threshold of the sealed peer
// group. With a single peer it is identical to Threshold.
type Consensus struct{}

// Name returns "consensus".
func (Consensus) Name() string { return "consensus" }

// RequiredKeys lists the config keys the variant reads.
func (Consensus) RequiredKeys() []string { return nil }

// Decide compares Δ with the mean Θ of the sealed peer group.
func (Consensus) Decide(in Input) (Verdict, error) {
	mean, err := in.Peers.MeanTheta()
	if err != nil {
		return Verdict{}, err
	}
	return compare(in.Delta, mean, "peer mean theta"), nil
}

// #endregion consensus

// #region hybrid
// Any ruptures when at least one member does (logical OR).
// Every member is evaluated on every step so that the sequence of random
// draws does not depend on earlier members' verdicts.
type Any struct {
	Policies []Policy
	Label    string // reported by Name; "any" when empty
}

// Name returns Label, or "any" when Label is empty.
func (a Any) Name() string {
	if a.Label != "" {
		return a.Label
	}
	return "any"
}

// RequiredKeys lists the config keys the variant reads.
func (a Any) RequiredKeys() []string { return memberKeys(a.Policies) }

// Decide evaluates every member and ORs their verdicts.
func (a Any) Decide(in Input) (Verdict, error) {
	return combine(in, a.Policies, a.Name(), func(acc, v bool) bool { return acc || v }, false)
}

// All ruptures only when every member does (logical AND).
type All struct {
	Policies []Policy
}

// Name returns "all".
func (a All) Name() string { return "all" }

// RequiredKeys lists the config keys the variant reads.
func (a All) RequiredKeys() []string { return memberKeys(a.Policies) }

// Decide evaluates every member and ANDs their verdicts.
func (a All) Decide(in Input) (Verdict, error) {
	return combine(in, a.Policies, "all", func(acc, v bool) bool { return acc && v }, true)
}

func combine(in Input, members []Policy, name string, join func(acc, v bool) bool, start bool) (Verdict, error) {
	if len(members) == 0 {
		return Verdict{}, &core.ConfigError{Variant: name, Reason: "no member policies"}
	}
	out := Verdict{Rupture: start, Margin: in.Delta - in.Theta}
	reasons := make([]string, 0, len(members))
	for i, p := range members {
		v, err := p.Decide(in)
		if err != nil {
			return Verdict{}, fmt.Errorf("%s member %d: %w", name, i, err)
		}
		out.Rupture = join(out.Rupture, v.Rupture)
		if v.Stochastic && !out.Stochastic {
			out.Stochastic = true
			out.Probability = v.Probability
		}
		reasons = append(reasons, v.Reason)
	}
	out.Reason = name + "(" + strings.Join(reasons, "; ") + ")"
	return out, nil
}

// memberKeys unions the required keys of members that declare them.
func memberKeys(members []Policy) []string {
	seen := map[string]bool{}
	var keys []string
	for _, p := range members {
		cv, ok := p.(core.Variant)
		if !ok {
			continue
		}
		for _, k := range cv.RequiredKeys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// #endregion hybrid
