package diag

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

// Autocorrelation returns the sample autocorrelation of x at lags
// 0..maxLag, normalized by the lag-0 autocovariance. Lags at or beyond
// len(x) are omitted. A constant series (a stuck chain) reports 1 at every
// lag.
func Autocorrelation(x []float64, maxLag int) []float64 {
	n := len(x)
	if n == 0 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(x, nil)
	var c0 float64
	for _, v := range x {
		c0 += (v - mean) * (v - mean)
	}

	acf := make([]float64, maxLag+1)
	if c0 == 0 {
		for k := range acf {
			acf[k] = 1
		}
		return acf
	}
	for k := 0; k <= maxLag; k++ {
		var ck float64
		for t := 0; t+k < n; t++ {
			ck += (x[t] - mean) * (x[t+k] - mean)
		}
		acf[k] = ck / c0
	}
	return acf
}

// ChainACF holds the autocorrelation of one parameter within one chain.
type ChainACF struct {
	Param string
	Chain int
	ACF   []float64
}

// AutocorrelationTable computes the post-warmup ACF of every parameter in
// every chain.
func AutocorrelationTable(draws *sampler.Draws, maxLag int) ([]ChainACF, error) {
	if maxLag < 0 {
		return nil, fmt.Errorf("max lag must be >= 0, got %d", maxLag)
	}
	post := draws.PostWarmup()
	var out []ChainACF
	for _, p := range post.Params {
		for c := 1; c <= post.NumChains(); c++ {
			x, err := post.ChainColumn(p, c)
			if err != nil {
				return nil, err
			}
			out = append(out, ChainACF{Param: p, Chain: c, ACF: Autocorrelation(x, maxLag)})
		}
	}
	return out, nil
}
