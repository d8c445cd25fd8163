// Package concentration demonstrates concentration of measure: as the
// dimension of a standard normal grows, samples lie further from the mode
// and in an ever thinner shell around it.
package concentration

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/mcmc-sim/mcmc-sim/sim"
)

// DefaultDims are the dimensions shown by the CLI.
var DefaultDims = []int{1, 10, 100, 1000}

// DefaultSamples is the number of draws per dimension.
const DefaultSamples = 1000

// Shell summarizes the radial distance of samples from the mode.
type Shell struct {
	Dims      int
	Distances []float64
	Mean      float64
	SD        float64
	Min       float64
	Max       float64
}

// RadialDistances draws samples points from a dims-dimensional standard
// normal and returns their Euclidean distances from the origin.
func RadialDistances(dims, samples int, rng *rand.Rand) (*Shell, error) {
	if dims < 1 {
		return nil, fmt.Errorf("dims must be >= 1, got %d", dims)
	}
	if samples < 2 {
		return nil, fmt.Errorf("samples must be >= 2, got %d", samples)
	}

	mu := make([]float64, dims)
	sigma := mat.NewDiagDense(dims, nil)
	for i := 0; i < dims; i++ {
		sigma.SetDiag(i, 1)
	}
	normal, ok := distmv.NewNormal(mu, sigma, rng)
	if !ok {
		return nil, fmt.Errorf("identity covariance of size %d is not positive definite", dims)
	}

	distances := make([]float64, samples)
	x := make([]float64, dims)
	for i := range distances {
		normal.Rand(x)
		distances[i] = floats.Norm(x, 2)
	}

	mean, sd := stat.MeanStdDev(distances, nil)
	return &Shell{
		Dims:      dims,
		Distances: distances,
		Mean:      mean,
		SD:        sd,
		Min:       floats.Min(distances),
		Max:       floats.Max(distances),
	}, nil
}

// Sweep runs RadialDistances for each dimension. Every dimension draws from
// its own stream of the concentration subsystem, so adding a dimension does
// not change the others.
func Sweep(dims []int, samples int, key sim.SimulationKey) ([]*Shell, error) {
	rng := sim.NewPartitionedRNG(key)
	out := make([]*Shell, 0, len(dims))
	for _, d := range dims {
		shell, err := RadialDistances(d, samples, rng.ForSubsystem(fmt.Sprintf("%s_%d", sim.SubsystemConcentration, d)))
		if err != nil {
			return nil, err
		}
		logrus.Debugf("dims=%d mean radius %.3f (sqrt(D)=%.3f)", d, shell.Mean, math.Sqrt(float64(d)))
		out = append(out, shell)
	}
	return out, nil
}
