// Package registry is the static, read-only catalogue of built-in variants
// for each role. It maps names to metadata and to constructors so that
// scenarios and the command line can select variants by name.
package registry

import (
	"sort"

	"github.com/danielpatrickdp/rupture-state/internal/collapse"
	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/realign"
	"github.com/danielpatrickdp/rupture-state/internal/rupture"
	"github.com/danielpatrickdp/rupture-state/internal/threshold"
)

// #region roles
// Role names.
const (
	RoleRealign   = "realign"
	RoleThreshold = "threshold"
	RoleRupture   = "rupture"
	RoleCollapse  = "collapse"
)

// Roles lists the four roles in step order.
func Roles() []string {
	return []string{RoleRealign, RoleThreshold, RoleRupture, RoleCollapse}
}

// #endregion roles

// #region entry
// Entry describes one built-in variant.
type Entry struct {
	Name       string   `json:"name"`
	Formula    string   `json:"formula"`
	Meaning    string   `json:"meaning"`
	Keys       []string `json:"keys,omitempty"`
	Stochastic bool     `json:"stochastic,omitempty"`
	Coupled    bool     `json:"coupled,omitempty"`
}

// #endregion entry

// #region catalogue
var realignEntries = []Entry{
	{Name: "linear", Formula: "V' = V + k·(R − V)", Meaning: "Fixed-fraction move toward the signal.", Keys: []string{core.KeyGain}},
	{Name: "bounded", Formula: "V' = V + tanh(k·(R − V))", Meaning: "Smooth convergence; suppresses overreaction to large distortion.", Keys: []string{core.KeyGain}},
	{Name: "fatigue", Formula: "V' = V + [k / (1 + fatigue·E)]·(R − V)", Meaning: "Accumulated misalignment reduces flexibility.", Keys: []string{core.KeyGain, core.KeyFatigue}},
}

var thresholdEntries = []Entry{
	{Name: "linear_growth", Formula: "Θ = theta0 + theta_rate·E", Meaning: "Rupture resistance grows linearly with misalignment.", Keys: []string{core.KeyTheta0, core.KeyThetaRate}},
	{Name: "saturating", Formula: "Θ = theta0 + theta_rate·E / (1 + theta_saturation·E)", Meaning: "Tolerance saturates over time.", Keys: []string{core.KeyTheta0, core.KeyThetaRate, core.KeyThetaSaturation}},
	{Name: "stochastic", Formula: "Θ = theta0 + theta_rate·E + N(0, theta_sigma²)", Meaning: "Threshold perturbed by ambient volatility.", Keys: []string{core.KeyTheta0, core.KeyThetaRate, core.KeyThetaSigma}, Stochastic: true},
	{Name: "peer_coupled", Formula: "Θ = theta0 + theta_rate·E + peer_weight·mean(peer E)", Meaning: "Threshold shaped by the misalignment of same-step peers.", Keys: []string{core.KeyTheta0, core.KeyThetaRate, core.KeyPeerWeight}, Coupled: true},
}

var ruptureEntries = []Entry{
	{Name: "threshold", Formula: "Δ > Θ", Meaning: "Rupture when distortion exceeds the agent's own tolerance."},
	{Name: "stochastic", Formula: "P(rupture) = sigmoid(slope·(Δ − Θ))", Meaning: "Probabilistic rupture driven by risk pressure.", Keys: []string{core.KeySlope}, Stochastic: true},
	{Name: "consensus", Formula: "Δ > mean(peer Θ)", Meaning: "Rupture when distortion exceeds the peers' average tolerance.", Coupled: true},
	{Name: "hybrid", Formula: "threshold ∨ stochastic", Meaning: "Deterministic rupture past the threshold plus probabilistic rupture near it.", Keys: []string{core.KeySlope}, Stochastic: true},
}

var collapseEntries = []Entry{
	{Name: "reset", Formula: "V' = V0, E' = 0", Meaning: "Hard collapse to the initial belief with memory wiped."},
	{Name: "soft_decay", Formula: "V' = V + collapse_pull·(R − V), E' = E·decay_rate", Meaning: "Partial reorientation with fading memory.", Keys: []string{core.KeyCollapsePull, core.KeyDecayRate}},
	{Name: "adopt_r", Formula: "V' = R, E' = 0", Meaning: "Belief overwritten by the received signal."},
	{Name: "randomized", Formula: "V' = V0 + N(0, collapse_sigma²), E' = 0", Meaning: "Restart near the initial belief with noise.", Keys: []string{core.KeyCollapseSigma}, Stochastic: true},
	{Name: "symbolic", Formula: "V' = V, E' = E", Meaning: "Categorical restructuring recorded by label only."},
}

var catalogue = map[string][]Entry{
	RoleRealign:   realignEntries,
	RoleThreshold: thresholdEntries,
	RoleRupture:   ruptureEntries,
	RoleCollapse:  collapseEntries,
}

// #endregion catalogue

// #region lookup
// Describe returns a copy of the entries for role in catalogue order.
func Describe(role string) ([]Entry, error) {
	entries, ok := catalogue[role]
	if !ok {
		return nil, &core.UnknownVariantError{Role: "role", Name: role, Valid: Roles()}
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Keys = append([]string(nil), e.Keys...)
		out[i] = e
	}
	return out, nil
}

// Names returns the sorted variant names for role, or nil for an unknown role.
func Names(role string) []string {
	entries := catalogue[role]
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the entry for name within role.
func Lookup(role, name string) (Entry, error) {
	entries, err := Describe(role)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, &core.UnknownVariantError{Role: role, Name: name, Valid: Names(role)}
}

// #endregion lookup

// #region builders
// Realign returns the realignment operator named name.
func Realign(name string) (realign.Operator, error) {
	switch name {
	case "linear":
		return realign.Linear{}, nil
	case "bounded":
		return realign.Bounded{}, nil
	case "fatigue":
		return realign.Fatigue{}, nil
	}
	return nil, &core.UnknownVariantError{Role: RoleRealign, Name: name, Valid: Names(RoleRealign)}
}

// Threshold returns the threshold function named name.
func Threshold(name string) (threshold.Function, error) {
	switch name {
	case "linear_growth":
		return threshold.LinearGrowth{}, nil
	case "saturating":
		return threshold.Saturating{}, nil
	case "stochastic":
		return threshold.Stochastic{}, nil
	case "peer_coupled":
		return threshold.PeerCoupled{}, nil
	}
	return nil, &core.UnknownVariantError{Role: RoleThreshold, Name: name, Valid: Names(RoleThreshold)}
}

// Rupture returns the rupture policy named name.
func Rupture(name string) (rupture.Policy, error) {
	switch name {
	case "threshold":
		return rupture.Threshold{}, nil
	case "stochastic":
		return rupture.Stochastic{}, nil
	case "consensus":
		return rupture.Consensus{}, nil
	case "hybrid":
		return rupture.Any{Policies: []rupture.Policy{rupture.Threshold{}, rupture.Stochastic{}}, Label: "hybrid"}, nil
	}
	return nil, &core.UnknownVariantError{Role: RoleRupture, Name: name, Valid: Names(RoleRupture)}
}

// Collapse returns the collapse model named name. tag relabels the model's
// outcome; for symbolic it becomes the label suffix.
func Collapse(name, tag string) (collapse.Model, error) {
	var m collapse.Model
	switch name {
	case "reset":
		m = collapse.Reset{}
	case "soft_decay":
		m = collapse.SoftDecay{}
	case "adopt_r":
		m = collapse.AdoptR{}
	case "randomized":
		m = collapse.Randomized{}
	case "symbolic":
		return collapse.Symbolic{Tag: tag}, nil
	default:
		return nil, &core.UnknownVariantError{Role: RoleCollapse, Name: name, Valid: Names(RoleCollapse)}
	}
	if tag != "" {
		return collapse.Tagged{Base: m, Tag: tag}, nil
	}
	return m, nil
}

// #endregion builders

// #region defaults
// DefaultConfig returns a parameter set covering every built-in variant.
func DefaultConfig() core.Config {
	return core.NewConfig(map[string]float64{
		core.KeyGain:            0.3,
		core.KeyFatigue:         0.5,
		core.KeyMemoryRate:      0.1,
		core.KeyTheta0:          0.35,
		core.KeyThetaRate:       0.05,
		core.KeyThetaSaturation: 0.3,
		core.KeyThetaSigma:      0.025,
		core.KeyPeerWeight:      0.1,
		core.KeySlope:           10,
		core.KeyCollapsePull:    0.5,
		core.KeyDecayRate:       0.5,
		core.KeyCollapseSigma:   0.5,
	})
}

// #endregion defaults
