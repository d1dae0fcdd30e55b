// Package scenario loads simulation scenarios from YAML and turns them
// into ready-to-run states and a signal sequence.
package scenario

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/registry"
	"github.com/danielpatrickdp/rupture-state/internal/signals"
	"github.com/danielpatrickdp/rupture-state/internal/state"
)

var validate = validator.New()

// #region load
// Load reads and validates the scenario file at path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario. Signal settings that are
// not given keep their defaults.
func Parse(data []byte) (Scenario, error) {
	sc := Scenario{Signal: signals.DefaultProducerConfig()}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := Validate(sc); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks struct constraints and that every named variant exists.
func Validate(sc Scenario) error {
	if err := validate.Struct(sc); err != nil {
		return &core.ConfigError{Variant: "scenario", Reason: err.Error()}
	}
	for _, a := range sc.Agents {
		if _, err := variants(a); err != nil {
			return fmt.Errorf("agent %s: %w", a.Name, err)
		}
	}
	return nil
}

// #endregion load

// #region build
// Built is a scenario ready to run.
type Built struct {
	Name    string
	States  []state.State
	Signals []float64
	Steps   int
	Mode    string
}

// Build constructs the agents' states and the signal sequence.
func Build(ctx context.Context, sc Scenario) (Built, error) {
	b := Built{Name: sc.Name}
	base := registry.DefaultConfig().Merge(core.NewConfig(sc.Params))

	for _, a := range sc.Agents {
		ops, err := variants(a)
		if err != nil {
			return Built{}, fmt.Errorf("agent %s: %w", a.Name, err)
		}
		cfg := base.Merge(core.NewConfig(a.Params))
		s, err := state.New(a.V0, a.E0, cfg, ops, state.WithName(a.Name), state.WithSeed(a.Seed))
		if err != nil {
			return Built{}, fmt.Errorf("agent %s: %w", a.Name, err)
		}
		b.States = append(b.States, s)
	}

	if len(sc.Signals) > 0 {
		b.Mode = "explicit"
		b.Signals = append([]float64(nil), sc.Signals...)
		b.Steps = sc.Steps
		if b.Steps == 0 || b.Steps > len(b.Signals) {
			b.Steps = len(b.Signals)
		}
		return b, nil
	}

	p, err := signals.NewProducer(sc.Signal)
	if err != nil {
		return Built{}, fmt.Errorf("signal: %w", err)
	}
	seq, err := p.Produce(ctx, sc.Steps)
	if err != nil {
		return Built{}, fmt.Errorf("produce signal: %w", err)
	}
	b.Mode = sc.Signal.Mode
	b.Signals = seq
	b.Steps = len(seq)
	return b, nil
}

func variants(a Agent) (state.Operators, error) {
	var ops state.Operators
	var err error
	if ops.Realign, err = registry.Realign(a.Realign); err != nil {
		return ops, err
	}
	if ops.Threshold, err = registry.Threshold(a.Threshold); err != nil {
		return ops, err
	}
	if ops.Rupture, err = registry.Rupture(a.Rupture); err != nil {
		return ops, err
	}
	if ops.Collapse, err = registry.Collapse(a.Collapse, a.CollapseTag); err != nil {
		return ops, err
	}
	return ops, nil
}

// #endregion build

// #region reseed
// WithSeed returns a copy of sc with every agent's seed offset by seed and
// the generated signal seeded with seed. Used to sweep one scenario over
// many seeds.
func WithSeed(sc Scenario, seed uint64) Scenario {
	out := sc
	out.Agents = make([]Agent, len(sc.Agents))
	for i, a := range sc.Agents {
		a.Seed += seed
		out.Agents[i] = a
	}
	out.Signal.Seed = seed
	return out
}

// #endregion reseed
