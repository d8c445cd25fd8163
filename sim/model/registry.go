package model

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/mcmc-sim/mcmc-sim/sim/prior"
)

// Registered model names.
const (
	RuggedContinent     = "rugged-continent"
	WildChainFlat       = "wild-chain-flat"
	WildChainWeak       = "wild-chain-weak"
	NonIdentifiableFlat = "nonidentifiable-flat"
	NonIdentifiableWeak = "nonidentifiable-weak"
)

// NonIdentifiableN is the number of simulated observations in the
// two-intercept models.
const NonIdentifiableN = 100

// BuildEnv supplies what a model builder may need. Dataset is only required
// by models over the ruggedness data; Rand is used to simulate toy data.
type BuildEnv struct {
	Dataset *Dataset
	Rand    *rand.Rand
	// Priors overrides default priors by parameter name.
	Priors map[string]prior.DistSpec
}

// Entry describes a registered model.
type Entry struct {
	Name        string
	CacheKey    string // fit file name in the cache directory
	Description string
	NeedsData   bool
	build       func(env BuildEnv) (*Linear, error)
}

// Build constructs the model, applying any prior overrides.
func (e Entry) Build(env BuildEnv) (*Linear, error) {
	if e.NeedsData && env.Dataset == nil {
		return nil, fmt.Errorf("model %s requires the ruggedness dataset", e.Name)
	}
	if !e.NeedsData && env.Rand == nil {
		env.Rand = rand.New(rand.NewPCG(0, 0))
	}
	m, err := e.build(env)
	if err != nil {
		return nil, err
	}
	if err := m.overridePriors(env.Priors); err != nil {
		return nil, err
	}
	return m, nil
}

var registry = map[string]Entry{
	RuggedContinent: {
		Name:        RuggedContinent,
		CacheKey:    "b09.01",
		Description: "log_gdp_std ~ a[cid] + b[cid] * (rugged_std - mean); weakly informative priors",
		NeedsData:   true,
		build:       buildRuggedContinent,
	},
	WildChainFlat: {
		Name:        WildChainFlat,
		CacheKey:    "b09.02",
		Description: "y = (-1, 1) ~ normal(alpha, sigma); flat priors, the wild chain",
		build: func(env BuildEnv) (*Linear, error) {
			return buildWildChain(WildChainFlat, prior.Flat{}, prior.HalfFlat{})
		},
	},
	WildChainWeak: {
		Name:        WildChainWeak,
		CacheKey:    "b09.03",
		Description: "y = (-1, 1) ~ normal(alpha, sigma); alpha ~ normal(1, 10), sigma ~ exponential(1)",
		build: func(env BuildEnv) (*Linear, error) {
			return buildWildChain(WildChainWeak, prior.NewNormal(1, 10), prior.NewExponential(1))
		},
	},
	NonIdentifiableFlat: {
		Name:        NonIdentifiableFlat,
		CacheKey:    "b09.04",
		Description: "y ~ normal(a1 + a2, sigma), y simulated from normal(0, 1); flat priors",
		build: func(env BuildEnv) (*Linear, error) {
			return buildNonIdentifiable(NonIdentifiableFlat, SimulateStandardNormal(env.Rand, NonIdentifiableN), prior.Flat{}, prior.HalfFlat{})
		},
	},
	NonIdentifiableWeak: {
		Name:        NonIdentifiableWeak,
		CacheKey:    "b09.05",
		Description: "y ~ normal(a1 + a2, sigma); a1, a2 ~ normal(0, 10), sigma ~ exponential(1)",
		build: func(env BuildEnv) (*Linear, error) {
			return buildNonIdentifiable(NonIdentifiableWeak, SimulateStandardNormal(env.Rand, NonIdentifiableN), prior.NewNormal(0, 10), prior.NewExponential(1))
		},
	},
}

// Lookup returns the registry entry for name.
func Lookup(name string) (Entry, error) {
	e, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown model %q (known: %v)", name, Names())
	}
	return e, nil
}

// Names returns the registered model names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func buildRuggedContinent(env BuildEnv) (*Linear, error) {
	d := env.Dataset
	y := make([]float64, len(d.Nations))
	cid := make([]int, len(d.Nations))
	centred := make([]float64, len(d.Nations))
	for i, n := range d.Nations {
		y[i] = n.LogGDPStd
		cid[i] = n.ContinentID
		centred[i] = n.RuggedStd - d.MeanRuggedStd
	}

	params := []Param{
		{Name: "a[1]", Prior: prior.NewNormal(1, 0.1)},
		{Name: "a[2]", Prior: prior.NewNormal(1, 0.1)},
		{Name: "b[1]", Prior: prior.NewNormal(0, 0.3)},
		{Name: "b[2]", Prior: prior.NewNormal(0, 0.3)},
		{Name: "sigma", Prior: prior.NewExponential(1)},
	}
	// theta layout: a[1], a[2], b[1], b[2], sigma
	mu := func(theta []float64, i int) float64 {
		k := cid[i] - 1
		return theta[k] + theta[2+k]*centred[i]
	}
	return NewLinear(RuggedContinent, params, y, mu, 4)
}

// WildChainData is the two-point dataset of the flat-prior experiments.
var WildChainData = []float64{-1, 1}

func buildWildChain(name string, alpha, sigma prior.Prior) (*Linear, error) {
	y := append([]float64(nil), WildChainData...)
	params := []Param{
		{Name: "alpha", Prior: alpha},
		{Name: "sigma", Prior: sigma},
	}
	mu := func(theta []float64, _ int) float64 { return theta[0] }
	return NewLinear(name, params, y, mu, 1)
}

func buildNonIdentifiable(name string, y []float64, a, sigma prior.Prior) (*Linear, error) {
	params := []Param{
		{Name: "a1", Prior: a},
		{Name: "a2", Prior: a},
		{Name: "sigma", Prior: sigma},
	}
	mu := func(theta []float64, _ int) float64 { return theta[0] + theta[1] }
	return NewLinear(name, params, y, mu, 2)
}

// SimulateStandardNormal draws n values from Normal(0, 1).
func SimulateStandardNormal(rng *rand.Rand, n int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = rng.NormFloat64()
	}
	return y
}

// overridePriors replaces priors by parameter name.
func (m *Linear) overridePriors(specs map[string]prior.DistSpec) error {
	for name, spec := range specs {
		idx := -1
		for i, p := range m.params {
			if p.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("model %s: prior override for unknown parameter %q", m.name, name)
		}
		p, err := prior.NewPrior(spec)
		if err != nil {
			return fmt.Errorf("model %s: parameter %s: %w", m.name, name, err)
		}
		m.params[idx].Prior = p
	}
	return nil
}
