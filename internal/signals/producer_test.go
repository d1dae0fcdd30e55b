package signals

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/rupture-state/internal/core"
)

// #region helpers

func produce(t *testing.T, cfg ProducerConfig, steps int) []float64 {
	t.Helper()
	p, err := NewProducer(cfg)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	out, err := p.Produce(context.Background(), steps)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	return out
}

// #endregion helpers

// #region mode-tests

func TestRandomWalk_SeededReproducible(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Seed = 42
	a := produce(t, cfg, 50)
	b := produce(t, cfg, 50)
	if len(a) != 50 {
		t.Fatalf("expected 50 values, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sequences diverge at %d", i)
		}
	}

	cfg.Seed = 43
	c := produce(t, cfg, 50)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical walks")
	}
}

func TestOscillate(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Mode = ModeOscillate
	cfg.Freq = 0.5
	out := produce(t, cfg, 10)
	for i, v := range out {
		if want := math.Sin(float64(i) * 0.5); math.Abs(v-want) > 1e-12 {
			t.Fatalf("step %d: got %v want %v", i, v, want)
		}
	}
}

func TestShock_JumpsAtConfiguredStep(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Mode = ModeShock
	cfg.Noise = 0
	cfg.ShockMagnitude = 3
	out := produce(t, cfg, 10)
	for i, v := range out {
		want := 0.0
		if i >= 5 {
			want = 3
		}
		if v != want {
			t.Fatalf("step %d: got %v want %v", i, v, want)
		}
	}

	cfg.ShockAt = 2
	out = produce(t, cfg, 4)
	if out[1] != 0 || out[2] != 3 {
		t.Fatalf("expected jump at step 2, got %v", out)
	}
}

func TestConstantAndCustom(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Mode = ModeConstant
	cfg.Value = 1.25
	for _, v := range produce(t, cfg, 5) {
		if v != 1.25 {
			t.Fatalf("expected 1.25, got %v", v)
		}
	}

	cfg.Mode = ModeCustom
	cfg.Custom = func(t int) float64 { return float64(t * t) }
	out := produce(t, cfg, 4)
	if out[3] != 9 {
		t.Fatalf("expected 9, got %v", out[3])
	}
}

// #endregion mode-tests

// #region error-tests

func TestNewProducer_Errors(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Mode = "sawtooth"
	_, err := NewProducer(cfg)
	var uv *core.UnknownVariantError
	if !errors.As(err, &uv) {
		t.Fatalf("expected UnknownVariantError, got %v", err)
	}
	if len(uv.Valid) != len(Modes()) {
		t.Fatalf("expected valid modes listed, got %v", uv.Valid)
	}

	cfg.Mode = ModeCustom
	if _, err := NewProducer(cfg); !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing custom fn, got %v", err)
	}

	cfg = DefaultProducerConfig()
	cfg.Noise = -1
	if _, err := NewProducer(cfg); !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("expected configuration error for negative noise, got %v", err)
	}
}

func TestProduce_NonFiniteCustomValue(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Mode = ModeCustom
	cfg.Custom = func(t int) float64 {
		if t == 2 {
			return math.Inf(1)
		}
		return 0
	}
	p, err := NewProducer(cfg)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	out, err := p.Produce(context.Background(), 5)
	if !errors.Is(err, core.ErrInvalidSignal) {
		t.Fatalf("expected invalid signal, got %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 values before failure, got %d", len(out))
	}
}

func TestProduce_Cancelled(t *testing.T) {
	p, err := NewProducer(DefaultProducerConfig())
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Produce(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// #endregion error-tests

// #region profile-tests

func TestDescribe(t *testing.T) {
	pr := Describe(ModeConstant, []float64{1, -1, 3})
	if pr.Steps != 3 || pr.Min != -1 || pr.Max != 3 || math.Abs(pr.Mean-1) > 1e-12 {
		t.Fatalf("unexpected profile %+v", pr)
	}
	if empty := Describe(ModeConstant, nil); empty.Steps != 0 {
		t.Fatalf("expected empty profile, got %+v", empty)
	}
}

// #endregion profile-tests
