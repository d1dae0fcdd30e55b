// Package signals produces external signal sequences R(t) for simulations.
package signals

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region producer

// Producer generates signal sequences. A Producer is deterministic: the
// same config and step count always yield the same sequence.
type Producer struct {
	config ProducerConfig
}

// NewProducer validates config and creates a Producer.
func NewProducer(config ProducerConfig) (*Producer, error) {
	switch config.Mode {
	case ModeRandomWalk, ModeOscillate, ModeShock, ModeConstant:
	case ModeCustom:
		if config.Custom == nil {
			return nil, &core.ConfigError{Variant: "signals", Key: "custom", Reason: "custom mode requires a function"}
		}
	default:
		return nil, &core.UnknownVariantError{Role: "signal mode", Name: config.Mode, Valid: Modes()}
	}
	if config.Noise < 0 || !core.IsFinite(config.Noise) {
		return nil, &core.ConfigError{Variant: "signals", Key: "noise", Reason: "must be finite and non-negative"}
	}
	return &Producer{config: config}, nil
}

// Config returns the producer's configuration.
func (p *Producer) Config() ProducerConfig { return p.config }

// #endregion producer

// #region produce

// Produce returns steps signal values. It stops early with ctx's error if
// ctx is cancelled.
func (p *Producer) Produce(ctx context.Context, steps int) ([]float64, error) {
	if steps < 0 {
		return nil, &core.ConfigError{Variant: "signals", Key: "steps", Reason: "must be non-negative"}
	}
	c := p.config
	rng := rand.New(rand.NewPCG(c.Seed, c.Seed))
	shockAt := c.ShockAt
	if shockAt < 0 {
		shockAt = steps / 2
	}

	out := make([]float64, 0, steps)
	r := c.Start
	for t := 0; t < steps; t++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		switch c.Mode {
		case ModeRandomWalk:
			r += rng.NormFloat64() * c.Noise
		case ModeOscillate:
			r = math.Sin(float64(t) * c.Freq)
		case ModeShock:
			if t == shockAt {
				r += c.ShockMagnitude
			} else {
				r += rng.NormFloat64() * c.Noise
			}
		case ModeConstant:
			r = c.Value
		case ModeCustom:
			r = c.Custom(t)
		}
		if !core.IsFinite(r) {
			return out, &core.InvalidSignalError{Value: r, T: t}
		}
		out = append(out, r)
	}
	return out, nil
}

// #endregion produce

// #region profile

// Describe summarizes a sequence. The zero Profile is returned for an
// empty sequence.
func Describe(mode string, seq []float64) Profile {
	if len(seq) == 0 {
		return Profile{Mode: mode}
	}
	pr := Profile{Mode: mode, Steps: len(seq), Min: seq[0], Max: seq[0]}
	var sum float64
	for _, v := range seq {
		pr.Min = math.Min(pr.Min, v)
		pr.Max = math.Max(pr.Max, v)
		sum += v
	}
	pr.Mean = sum / float64(len(seq))
	return pr
}

// #endregion profile
