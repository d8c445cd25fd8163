package diag

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

// WarningOptions sets the thresholds used by Warnings.
type WarningOptions struct {
	MinAcceptance float64 // warn below this per-chain acceptance rate
	MaxAcceptance float64 // warn above this per-chain acceptance rate
	// MaxChainSpread is the largest allowed gap between chain means, in
	// pooled within-chain standard deviations.
	MaxChainSpread float64
	// MaxAbs flags draws whose magnitude suggests an improper posterior.
	MaxAbs float64
}

// DefaultWarningOptions returns the thresholds used by the CLI.
func DefaultWarningOptions() WarningOptions {
	return WarningOptions{
		MinAcceptance:  0.1,
		MaxAcceptance:  0.8,
		MaxChainSpread: 1,
		MaxAbs:         1e4,
	}
}

// Warning is a textual sampler warning. Param is empty for chain-level
// warnings.
type Warning struct {
	Param   string
	Chain   int
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Param != "" && w.Chain > 0:
		return fmt.Sprintf("%s (chain %d): %s", w.Param, w.Chain, w.Message)
	case w.Param != "":
		return fmt.Sprintf("%s: %s", w.Param, w.Message)
	case w.Chain > 0:
		return fmt.Sprintf("chain %d: %s", w.Chain, w.Message)
	}
	return w.Message
}

// Warnings inspects draws for the problems the flat-prior and
// non-identifiable examples are meant to show. It does not compute R-hat
// or effective sample size.
func Warnings(draws *sampler.Draws, opts WarningOptions) []Warning {
	var out []Warning

	for i, a := range draws.Acceptance {
		if a < opts.MinAcceptance {
			out = append(out, Warning{Chain: i + 1, Message: fmt.Sprintf("acceptance rate %.3f is low; the proposal is too wide or the chain is stuck", a)})
		}
		if a > opts.MaxAcceptance {
			out = append(out, Warning{Chain: i + 1, Message: fmt.Sprintf("acceptance rate %.3f is high; the chain is taking tiny steps", a)})
		}
	}

	post := draws.PostWarmup()
	chains := post.NumChains()
	for _, p := range post.Params {
		x, _ := post.Column(p)
		if w, ok := magnitudeWarning(p, x, opts.MaxAbs); ok {
			out = append(out, w)
		}
		if chains < 2 {
			continue
		}
		if w, ok := spreadWarning(post, p, chains, opts.MaxChainSpread); ok {
			out = append(out, w)
		}
	}
	return out
}

func magnitudeWarning(param string, x []float64, maxAbs float64) (Warning, bool) {
	largest := 0.0
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Warning{Param: param, Message: "non-finite draws"}, true
		}
		largest = math.Max(largest, math.Abs(v))
	}
	if largest > maxAbs {
		return Warning{Param: param, Message: fmt.Sprintf("draws reach magnitude %.3g; the prior may be too flat for the data", largest)}, true
	}
	return Warning{}, false
}

func spreadWarning(post *sampler.Draws, param string, chains int, maxSpread float64) (Warning, bool) {
	means := make([]float64, 0, chains)
	var pooledVar float64
	for c := 1; c <= chains; c++ {
		x, _ := post.ChainColumn(param, c)
		if len(x) < 2 {
			return Warning{}, false
		}
		mean, variance := stat.MeanVariance(x, nil)
		means = append(means, mean)
		pooledVar += variance
	}
	pooledSD := math.Sqrt(pooledVar / float64(chains))

	lo, hi := means[0], means[0]
	for _, m := range means[1:] {
		lo = math.Min(lo, m)
		hi = math.Max(hi, m)
	}
	if pooledSD == 0 {
		if hi > lo {
			return Warning{Param: param, Message: "chains are stuck at different values"}, true
		}
		return Warning{}, false
	}
	if spread := (hi - lo) / pooledSD; spread > maxSpread {
		return Warning{Param: param, Message: fmt.Sprintf("chain means differ by %.2f within-chain SDs; chains have not converged to the same distribution", spread)}, true
	}
	return Warning{}, false
}
