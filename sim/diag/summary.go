// Package diag turns posterior draws into the data behind the usual MCMC
// diagnostics: parameter summaries, autocorrelation, pairwise correlation,
// trace-rank histograms and plain-text warnings.
// This package has no plotting; callers render the tables.
package diag

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

// ParamSummary holds the marginal posterior summary of one parameter.
type ParamSummary struct {
	Param    string
	Mean     float64
	SD       float64
	Q2_5     float64
	Q50      float64
	Q97_5    float64
	NumDraws int
}

// Summarize computes marginal summaries over post-warmup draws, pooled
// across chains. Parameters appear in model order.
func Summarize(draws *sampler.Draws) []ParamSummary {
	post := draws.PostWarmup()
	out := make([]ParamSummary, 0, len(post.Params))
	for _, p := range post.Params {
		x, _ := post.Column(p)
		out = append(out, summarizeColumn(p, x))
	}
	return out
}

func summarizeColumn(param string, x []float64) ParamSummary {
	s := ParamSummary{Param: param, NumDraws: len(x)}
	if len(x) == 0 {
		return s
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.SD = stat.StdDev(sorted, nil)
	}
	s.Q2_5 = stat.Quantile(0.025, stat.LinInterp, sorted, nil)
	s.Q50 = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	s.Q97_5 = stat.Quantile(0.975, stat.LinInterp, sorted, nil)
	return s
}

// ChainMeans returns the post-warmup mean of param for each chain (index
// chain-1).
func ChainMeans(draws *sampler.Draws, param string) ([]float64, error) {
	post := draws.PostWarmup()
	means := make([]float64, post.NumChains())
	for c := range means {
		x, err := post.ChainColumn(param, c+1)
		if err != nil {
			return nil, err
		}
		if len(x) > 0 {
			means[c] = stat.Mean(x, nil)
		}
	}
	return means, nil
}
