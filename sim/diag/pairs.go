package diag

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

// PairsMatrix is the correlation matrix of post-warmup draws, the numeric
// content of a pairs plot.
type PairsMatrix struct {
	Params []string
	Corr   *mat.SymDense
}

// At returns the correlation between params a and b.
func (p *PairsMatrix) At(a, b string) (float64, error) {
	i, j := -1, -1
	for k, name := range p.Params {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, fmt.Errorf("unknown parameter pair (%q, %q)", a, b)
	}
	return p.Corr.At(i, j), nil
}

// Pairs computes the pooled correlation matrix of post-warmup draws.
func Pairs(draws *sampler.Draws) (*PairsMatrix, error) {
	post := draws.PostWarmup()
	n, d := len(post.Rows), len(post.Params)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 post-warmup draws, got %d", n)
	}

	data := mat.NewDense(n, d, nil)
	for i, r := range post.Rows {
		data.SetRow(i, r.Values)
	}
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)
	return &PairsMatrix{Params: post.Params, Corr: &corr}, nil
}
