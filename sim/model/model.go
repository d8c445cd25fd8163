// Package model defines the small Gaussian linear models fitted by the
// sampler: the ruggedness-by-continent regression and the toy models used to
// show what flat priors and non-identifiable parameters do to a chain.
package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mcmc-sim/mcmc-sim/sim/prior"
)

// Model is an unnormalized log posterior over a named parameter vector.
type Model interface {
	Name() string
	Params() []string
	// LogPosterior returns log p(theta) + log p(y | theta) up to a constant.
	// Returns -Inf for theta outside the support.
	LogPosterior(theta []float64) float64
	// Initial draws a starting point inside the support.
	Initial(rng *rand.Rand) []float64
}

// Param is a named parameter with its prior.
type Param struct {
	Name  string
	Prior prior.Prior
}

// Predictor returns the linear predictor for observation i.
type Predictor func(theta []float64, i int) float64

// Linear is a Gaussian linear model: y_i ~ Normal(mu_i, sigma), where mu_i
// comes from Predictor and sigma is the parameter at SigmaIndex.
type Linear struct {
	name       string
	params     []Param
	y          []float64
	mu         Predictor
	sigmaIndex int
}

// NewLinear validates and returns a Linear model.
func NewLinear(name string, params []Param, y []float64, mu Predictor, sigmaIndex int) (*Linear, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("model %s: no parameters", name)
	}
	if sigmaIndex < 0 || sigmaIndex >= len(params) {
		return nil, fmt.Errorf("model %s: sigma index %d out of range", name, sigmaIndex)
	}
	if len(y) == 0 {
		return nil, fmt.Errorf("model %s: no observations", name)
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Prior == nil {
			return nil, fmt.Errorf("model %s: parameter %q has no prior", name, p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("model %s: duplicate parameter %q", name, p.Name)
		}
		seen[p.Name] = true
	}
	return &Linear{name: name, params: params, y: y, mu: mu, sigmaIndex: sigmaIndex}, nil
}

func (m *Linear) Name() string { return m.name }

func (m *Linear) Params() []string {
	names := make([]string, len(m.params))
	for i, p := range m.params {
		names[i] = p.Name
	}
	return names
}

// Priors returns the parameter list with priors, in sampling order.
func (m *Linear) Priors() []Param {
	out := make([]Param, len(m.params))
	copy(out, m.params)
	return out
}

// Observations returns the number of data points.
func (m *Linear) Observations() int { return len(m.y) }

func (m *Linear) LogPosterior(theta []float64) float64 {
	if len(theta) != len(m.params) {
		panic(fmt.Sprintf("model %s: theta has %d values, want %d", m.name, len(theta), len(m.params)))
	}
	sigma := theta[m.sigmaIndex]
	if !(sigma > 0) {
		return math.Inf(-1)
	}

	lp := 0.0
	for i, p := range m.params {
		lp += p.Prior.LogProb(theta[i])
		if math.IsInf(lp, -1) {
			return lp
		}
	}

	for i, y := range m.y {
		lp += distuv.Normal{Mu: m.mu(theta, i), Sigma: sigma}.LogProb(y)
	}
	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

// Initial draws each parameter uniformly on (-2, 2), or exp of that for
// parameters bounded below by zero, clamped into the prior's support.
func (m *Linear) Initial(rng *rand.Rand) []float64 {
	theta := make([]float64, len(m.params))
	for i, p := range m.params {
		u := -2 + 4*rng.Float64()
		lo, hi := p.Prior.Support()
		switch {
		case lo == 0 && math.IsInf(hi, 1):
			theta[i] = math.Exp(u)
		case !math.IsInf(lo, -1) && !math.IsInf(hi, 1):
			theta[i] = lo + (hi-lo)*rng.Float64()
		default:
			theta[i] = u
		}
	}
	if i := m.sigmaIndex; theta[i] <= 0 {
		theta[i] = math.Exp(-2 + 4*rng.Float64())
	}
	return theta
}
