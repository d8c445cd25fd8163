package diag

import (
	"fmt"
	"sort"

	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

// TraceRank is a trace-rank ("trank") histogram: the post-warmup draws of
// one parameter are ranked across all chains and each chain's ranks are
// binned. Well-mixed chains give roughly flat, overlapping histograms.
type TraceRank struct {
	Param  string
	Bins   int
	Counts [][]int // Counts[chain-1][bin]
}

// TraceRankHistogram computes the trank histogram of param with the given
// number of bins.
func TraceRankHistogram(draws *sampler.Draws, param string, bins int) (*TraceRank, error) {
	if bins < 1 {
		return nil, fmt.Errorf("bins must be >= 1, got %d", bins)
	}
	post := draws.PostWarmup()
	idx, err := post.ParamIndex(param)
	if err != nil {
		return nil, err
	}
	n := len(post.Rows)
	if n == 0 {
		return nil, fmt.Errorf("no post-warmup draws")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return post.Rows[order[a]].Values[idx] < post.Rows[order[b]].Values[idx]
	})

	tr := &TraceRank{Param: param, Bins: bins, Counts: make([][]int, post.NumChains())}
	for c := range tr.Counts {
		tr.Counts[c] = make([]int, bins)
	}
	for rank, row := range order {
		bin := rank * bins / n
		chain := post.Rows[row].Chain
		tr.Counts[chain-1][bin]++
	}
	return tr, nil
}
