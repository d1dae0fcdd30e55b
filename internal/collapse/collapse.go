// Package collapse provides the collapse model role: the discontinuous
// transition applied to a state when its rupture policy fires.
package collapse

import (
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region input
// Input carries the pre-step state and signal a collapse may read.
type Input struct {
	V      float64
	E      float64
	R      float64
	V0     float64
	E0     float64
	Config core.Config
	Rand   *rand.Rand
}

// Outcome is the post-collapse belief, memory and descriptive label.
// Label must be non-empty; it becomes the step record's collapse label.
type Outcome struct {
	V     float64
	E     float64
	Label string
}

// #endregion input

// #region model
// Model maps a ruptured state to its post-collapse values.
type Model interface {
	Collapse(in Input) (Outcome, error)
}

// Func adapts an ordinary function to the Model role.
type Func func(in Input) (Outcome, error)

// Collapse calls f.
func (f Func) Collapse(in Input) (Outcome, error) {
	return f(in)
}

// #endregion model

// #region reset
// Reset returns to the construction-time belief and clears memory.
type Reset struct{}

// Name returns "reset".
func (Reset) Name() string { return "reset" }

// RequiredKeys lists the config keys the variant reads.
func (Reset) RequiredKeys() []string { return nil }

// Collapse restores V0 and clears memory.
func (Reset) Collapse(in Input) (Outcome, error) {
	return Outcome{V: in.V0, E: 0, Label: "reset"}, nil
}

// #endregion reset

// #region soft-decay
// SoftDecay pulls the belief partway toward R and scales memory down:
// V' = V + collapse_pull·(R − V), E' = E·decay_rate.
type SoftDecay struct{}

// Name returns "soft_decay".
func (SoftDecay) Name() string { return "soft_decay" }

// RequiredKeys lists the config keys the variant reads.
func (SoftDecay) RequiredKeys() []string {
	return []string{core.KeyCollapsePull, core.KeyDecayRate}
}

// Collapse pulls V toward R by collapse_pull and decays E by decay_rate.
func (SoftDecay) Collapse(in Input) (Outcome, error) {
	rate := in.Config.Float(core.KeyDecayRate)
	if rate < 0 {
		return Outcome{}, &core.ConfigError{Variant: "soft_decay", Key: core.KeyDecayRate, Reason: "must be non-negative"}
	}
	pull := in.Config.Float(core.KeyCollapsePull)
	return Outcome{
		V:     in.V + pull*(in.R-in.V),
		E:     in.E * rate,
		Label: "soft_decay",
	}, nil
}

// #endregion soft-decay

// #region adopt-r
// AdoptR replaces the belief with the signal. Memory is cleared unless
// KeepMemory is set.
type AdoptR struct {
	KeepMemory bool
}

// Name returns "adopt_r".
func (AdoptR) Name() string { return "adopt_r" }

// RequiredKeys lists the config keys the variant reads.
func (AdoptR) RequiredKeys() []string { return nil }

// Collapse adopts R as the new belief.
func (a AdoptR) Collapse(in Input) (Outcome, error) {
	e := 0.0
	if a.KeepMemory {
		e = in.E
	}
	return Outcome{V: in.R, E: e, Label: "adopt_r"}, nil
}

// #endregion adopt-r

// #region randomized
// Randomized restarts near the initial belief: V' = V0 + N(0, collapse_sigma²),
// E' = 0. It draws only from the Input's random source.
type Randomized struct{}

// Name returns "randomized".
func (Randomized) Name() string { return "randomized" }

// RequiredKeys lists the config keys the variant reads.
func (Randomized) RequiredKeys() []string { return []string{core.KeyCollapseSigma} }

// Collapse restarts near V0 with Gaussian noise and clears memory.
func (Randomized) Collapse(in Input) (Outcome, error) {
	if in.Rand == nil {
		return Outcome{}, &core.ConfigError{Variant: "randomized", Key: "rand", Reason: "random source required"}
	}
	return Outcome{
		V:     in.V0 + in.Rand.NormFloat64()*in.Config.Float(core.KeyCollapseSigma),
		E:     0,
		Label: "randomized",
	}, nil
}

// #endregion randomized

// #region symbolic
// Symbolic records a categorical restructuring without touching the
// numeric state. The label is "symbolic" or "symbolic:<Tag>".
type Symbolic struct {
	Tag string
}

// Name returns "symbolic".
func (Symbolic) Name() string { return "symbolic" }

// RequiredKeys lists the config keys the variant reads.
func (Symbolic) RequiredKeys() []string { return nil }

// Collapse keeps V and E and only labels the step.
func (s Symbolic) Collapse(in Input) (Outcome, error) {
	label := "symbolic"
	if s.Tag != "" {
		label += ":" + s.Tag
	}
	return Outcome{V: in.V, E: in.E, Label: label}, nil
}

// #endregion symbolic

// #region tagged
// Tagged runs Base and replaces its label with Tag, keeping the numeric
// outcome. An empty Tag keeps the base label.
type Tagged struct {
	Base Model
	Tag  string
}

// Name returns "tagged".
func (t Tagged) Name() string { return "tagged" }

// RequiredKeys returns the keys of Base.
func (t Tagged) RequiredKeys() []string {
	if cv, ok := t.Base.(core.Variant); ok {
		return cv.RequiredKeys()
	}
	return nil
}

// Collapse applies Base and replaces its label with Tag.
func (t Tagged) Collapse(in Input) (Outcome, error) {
	if t.Base == nil {
		return Outcome{}, &core.ConfigError{Variant: "tagged", Reason: "base model required"}
	}
	out, err := t.Base.Collapse(in)
	if err != nil {
		return Outcome{}, err
	}
	if t.Tag != "" {
		out.Label = t.Tag
	}
	return out, nil
}

// #endregion tagged
