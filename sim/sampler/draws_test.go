package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDraws() *Draws {
	return &Draws{
		Model:  "toy",
		Params: []string{"alpha", "sigma"},
		Rows: []Draw{
			{Chain: 1, Iteration: 1, Warmup: true, Values: []float64{5, 9}},
			{Chain: 1, Iteration: 2, Values: []float64{0.1, 1.1}},
			{Chain: 1, Iteration: 3, Values: []float64{0.2, 1.2}},
			{Chain: 2, Iteration: 1, Warmup: true, Values: []float64{-5, 8}},
			{Chain: 2, Iteration: 2, Values: []float64{-0.1, 0.9}},
			{Chain: 2, Iteration: 3, Values: []float64{-0.2, 0.8}},
		},
		Acceptance: []float64{0.2, 0.4},
	}
}

func TestDraws_PostWarmup(t *testing.T) {
	d := fixtureDraws()
	post := d.PostWarmup()
	assert.Len(t, post.Rows, 4)
	for _, r := range post.Rows {
		assert.False(t, r.Warmup)
	}
	// original table untouched
	assert.Len(t, d.Rows, 6)
}

func TestDraws_Column(t *testing.T) {
	d := fixtureDraws().PostWarmup()
	alpha, err := d.Column("alpha")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, -0.1, -0.2}, alpha)

	_, err = d.Column("beta")
	assert.Error(t, err)
}

func TestDraws_ChainColumn(t *testing.T) {
	d := fixtureDraws()
	sigma, err := d.ChainColumn("sigma", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 0.9, 0.8}, sigma)

	none, err := d.ChainColumn("sigma", 7)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDraws_NumChainsAndAcceptance(t *testing.T) {
	d := fixtureDraws()
	assert.Equal(t, 2, d.NumChains())
	assert.InDelta(t, 0.3, d.MeanAcceptance(), 1e-12)
	assert.Equal(t, 0.0, (&Draws{}).MeanAcceptance())
}

func TestDraws_ParamIndex(t *testing.T) {
	d := fixtureDraws()
	idx, err := d.ParamIndex("sigma")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	_, err = d.ParamIndex("tau")
	assert.Error(t, err)
}
