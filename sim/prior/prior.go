// Package prior provides the prior densities used by the regression models.
// Proper priors delegate to gonum's distuv; Flat and HalfFlat are the
// improper uniform priors that reproduce the "wild chain" experiments.
package prior

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is a univariate log density over a single model parameter.
type Prior interface {
	// LogProb returns the (possibly unnormalized) log density at x.
	// Returns -Inf outside the support.
	LogProb(x float64) float64
	// Support returns the closed bounds of the parameter space.
	Support() (lo, hi float64)
	String() string
}

// DistSpec is the YAML-facing description of a prior.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Normal is a Gaussian prior.
type Normal struct {
	dist distuv.Normal
}

// NewNormal returns a Normal(mu, sigma) prior.
func NewNormal(mu, sigma float64) *Normal {
	return &Normal{dist: distuv.Normal{Mu: mu, Sigma: sigma}}
}

func (p *Normal) LogProb(x float64) float64 { return p.dist.LogProb(x) }

func (p *Normal) Support() (float64, float64) { return math.Inf(-1), math.Inf(1) }

func (p *Normal) String() string {
	return fmt.Sprintf("normal(%g, %g)", p.dist.Mu, p.dist.Sigma)
}

// Exponential is a rate-parameterized exponential prior, typical for scales.
type Exponential struct {
	dist distuv.Exponential
}

// NewExponential returns an Exponential(rate) prior.
func NewExponential(rate float64) *Exponential {
	return &Exponential{dist: distuv.Exponential{Rate: rate}}
}

func (p *Exponential) LogProb(x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	return p.dist.LogProb(x)
}

func (p *Exponential) Support() (float64, float64) { return 0, math.Inf(1) }

func (p *Exponential) String() string {
	return fmt.Sprintf("exponential(%g)", p.dist.Rate)
}

// Uniform is a proper uniform prior on [min, max].
type Uniform struct {
	dist distuv.Uniform
}

// NewUniform returns a Uniform(lo, hi) prior.
func NewUniform(lo, hi float64) *Uniform {
	return &Uniform{dist: distuv.Uniform{Min: lo, Max: hi}}
}

func (p *Uniform) LogProb(x float64) float64 {
	if x < p.dist.Min || x > p.dist.Max {
		return math.Inf(-1)
	}
	return p.dist.LogProb(x)
}

func (p *Uniform) Support() (float64, float64) { return p.dist.Min, p.dist.Max }

func (p *Uniform) String() string {
	return fmt.Sprintf("uniform(%g, %g)", p.dist.Min, p.dist.Max)
}

// StudentT is a location-scale Student-t prior.
type StudentT struct {
	dist distuv.StudentsT
}

// NewStudentT returns a StudentT(nu, mu, sigma) prior.
func NewStudentT(nu, mu, sigma float64) *StudentT {
	return &StudentT{dist: distuv.StudentsT{Mu: mu, Sigma: sigma, Nu: nu}}
}

func (p *StudentT) LogProb(x float64) float64 { return p.dist.LogProb(x) }

func (p *StudentT) Support() (float64, float64) { return math.Inf(-1), math.Inf(1) }

func (p *StudentT) String() string {
	return fmt.Sprintf("student_t(%g, %g, %g)", p.dist.Nu, p.dist.Mu, p.dist.Sigma)
}

// Flat is the improper uniform prior over the real line.
type Flat struct{}

func (Flat) LogProb(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return math.Inf(-1)
	}
	return 0
}

func (Flat) Support() (float64, float64) { return math.Inf(-1), math.Inf(1) }

func (Flat) String() string { return "flat" }

// HalfFlat is the improper uniform prior over the positive reals.
type HalfFlat struct{}

func (HalfFlat) LogProb(x float64) float64 {
	if !(x > 0) || math.IsInf(x, 1) {
		return math.Inf(-1)
	}
	return 0
}

func (HalfFlat) Support() (float64, float64) { return 0, math.Inf(1) }

func (HalfFlat) String() string { return "half_flat" }

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("prior requires parameter %q", k)
		}
	}
	return nil
}

// requirePositive checks that the named parameters are strictly positive.
func requirePositive(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if !(params[k] > 0) {
			return fmt.Errorf("prior parameter %q must be > 0, got %v", k, params[k])
		}
	}
	return nil
}

// NewPrior creates a Prior from a DistSpec.
func NewPrior(spec DistSpec) (Prior, error) {
	switch strings.ToLower(spec.Type) {
	case "normal":
		if err := requireParam(spec.Params, "mu", "sigma"); err != nil {
			return nil, err
		}
		if err := requirePositive(spec.Params, "sigma"); err != nil {
			return nil, err
		}
		return NewNormal(spec.Params["mu"], spec.Params["sigma"]), nil

	case "exponential":
		if err := requireParam(spec.Params, "rate"); err != nil {
			return nil, err
		}
		if err := requirePositive(spec.Params, "rate"); err != nil {
			return nil, err
		}
		return NewExponential(spec.Params["rate"]), nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		if spec.Params["min"] >= spec.Params["max"] {
			return nil, fmt.Errorf("uniform prior requires min < max, got [%v, %v]", spec.Params["min"], spec.Params["max"])
		}
		return NewUniform(spec.Params["min"], spec.Params["max"]), nil

	case "student_t":
		if err := requireParam(spec.Params, "nu", "mu", "sigma"); err != nil {
			return nil, err
		}
		if err := requirePositive(spec.Params, "nu", "sigma"); err != nil {
			return nil, err
		}
		return NewStudentT(spec.Params["nu"], spec.Params["mu"], spec.Params["sigma"]), nil

	case "flat":
		return Flat{}, nil

	case "half_flat":
		return HalfFlat{}, nil

	default:
		return nil, fmt.Errorf("unknown prior type %q (known: %s)", spec.Type, strings.Join(KnownTypes(), ", "))
	}
}

// KnownTypes lists the prior type names accepted by NewPrior.
func KnownTypes() []string {
	types := []string{"normal", "exponential", "uniform", "student_t", "flat", "half_flat"}
	sort.Strings(types)
	return types
}

// IsProper reports whether p integrates to one.
func IsProper(p Prior) bool {
	switch p.(type) {
	case Flat, HalfFlat, *Flat, *HalfFlat:
		return false
	}
	return true
}
