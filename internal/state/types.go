package state

import (
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/collapse"
	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/realign"
	"github.com/danielpatrickdp/rupture-state/internal/rupture"
	"github.com/danielpatrickdp/rupture-state/internal/threshold"
)

// #region operators
// Operators bundles the four injected roles of a state.
type Operators struct {
	Realign   realign.Operator
	Threshold threshold.Function
	Rupture   rupture.Policy
	Collapse  collapse.Model
}

// #endregion operators

// #region state
// State is an epistemic state: a belief V, a non-negative misalignment
// memory E and the roles that move them. It is a value; Step returns a new
// State and never modifies the receiver.
type State struct {
	v, e   float64
	v0, e0 float64
	t      int
	cfg    core.Config
	ops    Operators
	name   string
	seed   uint64
	src    rand.PCG
}

// #endregion state

// #region step-record
// StepRecord is the immutable audit entry for one step of one agent.
// CollapseLabel is non-empty iff Ruptured. Probability is meaningful only
// when Stochastic is set. Margin and Reason are the policy's own: under
// consensus the margin is measured against the peer mean Θ, not Theta.
type StepRecord struct {
	T             int     `json:"t"`
	Agent         string  `json:"agent"`
	R             float64 `json:"r"`
	Prior         float64 `json:"prior"`
	Delta         float64 `json:"delta"`
	Theta         float64 `json:"theta"`
	Ruptured      bool    `json:"ruptured"`
	CollapseLabel string  `json:"collapse_label,omitempty"`
	Margin        float64 `json:"margin"`
	Probability   float64 `json:"probability,omitempty"`
	Stochastic    bool    `json:"stochastic,omitempty"`
	V             float64 `json:"v"`
	E             float64 `json:"e"`
	Reason        string  `json:"reason,omitempty"`
}

// #endregion step-record

// #region options
type options struct {
	seed uint64
	name string
}

// Option configures New.
type Option func(*options)

// WithSeed seeds the state's random source. States built with the same seed
// and inputs produce identical traces.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithName sets the agent name recorded in every step record.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// #endregion options
