package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/sim"
)

func TestLoad_Golden(t *testing.T) {
	sc, err := Load("testdata/golden.yaml")
	require.NoError(t, err)
	assert.Equal(t, "golden", sc.Name)
	require.Len(t, sc.Agents, 1)

	b, err := Build(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, "explicit", b.Mode)
	assert.Equal(t, 3, b.Steps)
	require.Len(t, b.States, 1)
	assert.Equal(t, 0.5, b.States[0].Config().Float(core.KeyTheta0))

	res, err := sim.Run(b.States, b.Signals, b.Steps)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	for _, rec := range res.Records {
		assert.True(t, rec.Ruptured)
		assert.Equal(t, "reset", rec.CollapseLabel)
	}
}

func TestLoad_PeersGeneratesSignal(t *testing.T) {
	sc, err := Load("testdata/peers.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0.2, sc.Params[core.KeyPeerWeight])
	// unspecified signal settings keep their defaults
	assert.Equal(t, -1, sc.Signal.ShockAt)

	b, err := Build(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, "shock", b.Mode)
	assert.Len(t, b.Signals, 40)
	require.Len(t, b.States, 2)
	assert.Equal(t, 4.0, b.States[1].Config().Float(core.KeySlope))
	assert.Equal(t, 10.0, b.States[0].Config().Float(core.KeySlope))

	res, err := sim.Run(b.States, b.Signals, b.Steps)
	require.NoError(t, err)
	assert.Len(t, res.Records, 80)
	for _, rec := range res.Trace().ForAgent("volatile") {
		if rec.Ruptured {
			assert.Equal(t, "restart", rec.CollapseLabel)
		}
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"no agents": `name: x
signals: [1]
agents: []`,
		"missing variant": `signals: [1]
agents:
  - name: a
    realign: linear
    threshold: linear_growth
    rupture: threshold`,
		"negative memory": `signals: [1]
agents:
  - name: a
    e0: -1
    realign: linear
    threshold: linear_growth
    rupture: threshold
    collapse: reset`,
		"duplicate names": `signals: [1]
agents:
  - {name: a, realign: linear, threshold: linear_growth, rupture: threshold, collapse: reset}
  - {name: a, realign: linear, threshold: linear_growth, rupture: threshold, collapse: reset}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestParse_UnknownVariant(t *testing.T) {
	_, err := Parse([]byte(`signals: [1]
agents:
  - {name: a, realign: linear, threshold: linear_growth, rupture: majority, collapse: reset}`))
	var uv *core.UnknownVariantError
	require.True(t, errors.As(err, &uv), "got %v", err)
	assert.Equal(t, "majority", uv.Name)
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("agents: [unterminated"))
	assert.Error(t, err)
}

func TestBuild_UnknownSignalMode(t *testing.T) {
	sc, err := Parse([]byte(`steps: 5
signal: {mode: sawtooth}
agents:
  - {name: a, realign: linear, threshold: linear_growth, rupture: threshold, collapse: reset}`))
	require.NoError(t, err)
	_, err = Build(context.Background(), sc)
	assert.ErrorIs(t, err, core.ErrUnknownVariant)
}

func TestWithSeed(t *testing.T) {
	sc, err := Load("testdata/peers.yaml")
	require.NoError(t, err)

	a := WithSeed(sc, 100)
	assert.Equal(t, uint64(100), a.Agents[0].Seed)
	assert.Equal(t, uint64(111), a.Agents[1].Seed)
	assert.Equal(t, uint64(100), a.Signal.Seed)
	assert.Equal(t, uint64(11), sc.Agents[1].Seed, "original must be unchanged")
}
