package sampler

import (
	"fmt"
)

// Draw is one row of posterior output: the parameter vector held by a chain
// at one iteration.
type Draw struct {
	Chain     int // 1-based chain index
	Iteration int // 1-based, counting warmup
	Warmup    bool
	Values    []float64
}

// Draws is the tabular posterior produced by Run, ordered by chain then
// iteration.
type Draws struct {
	Model      string
	Params     []string
	Rows       []Draw
	Acceptance []float64 // post-warmup acceptance rate per chain
}

// NumChains returns the number of distinct chains in the table.
func (d *Draws) NumChains() int {
	n := 0
	for _, r := range d.Rows {
		if r.Chain > n {
			n = r.Chain
		}
	}
	return n
}

// ParamIndex returns the column index of name.
func (d *Draws) ParamIndex(name string) (int, error) {
	for i, p := range d.Params {
		if p == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown parameter %q (have %v)", name, d.Params)
}

// PostWarmup returns a view holding only the sampling-phase rows.
func (d *Draws) PostWarmup() *Draws {
	out := &Draws{Model: d.Model, Params: d.Params, Acceptance: d.Acceptance}
	for _, r := range d.Rows {
		if !r.Warmup {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Column returns every value of param across chains, in row order.
func (d *Draws) Column(param string) ([]float64, error) {
	idx, err := d.ParamIndex(param)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(d.Rows))
	for _, r := range d.Rows {
		out = append(out, r.Values[idx])
	}
	return out, nil
}

// ChainColumn returns the values of param for one chain, in iteration order.
func (d *Draws) ChainColumn(param string, chain int) ([]float64, error) {
	idx, err := d.ParamIndex(param)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, r := range d.Rows {
		if r.Chain == chain {
			out = append(out, r.Values[idx])
		}
	}
	return out, nil
}

// MeanAcceptance averages the per-chain acceptance rates.
func (d *Draws) MeanAcceptance() float64 {
	if len(d.Acceptance) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range d.Acceptance {
		sum += a
	}
	return sum / float64(len(d.Acceptance))
}
