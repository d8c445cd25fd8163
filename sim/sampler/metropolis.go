package sampler

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/samplemv"

	"github.com/mcmc-sim/mcmc-sim/sim/model"
)

const (
	// targetAcceptance is the acceptance rate warmup steers toward.
	targetAcceptance = 0.3
	// initialProposalSD is the per-coordinate proposal scale before any
	// covariance has been learned.
	initialProposalSD = 0.1
	// covJitter keeps the learned covariance positive definite.
	covJitter = 1e-8
	// minWindow and maxWindow bound the warmup adaptation window.
	minWindow = 20
	maxWindow = 200
)

// logTarget adapts a model to gonum's distmv.LogProber.
type logTarget struct {
	m model.Model
}

func (t logTarget) LogProb(x []float64) float64 {
	return t.m.LogPosterior(x)
}

// chain is one random-walk Metropolis chain. The proposal is a Gaussian
// with covariance factor * (2.38^2 / d) * cov.
type chain struct {
	id      int
	model   model.Model
	rng     *rand.Rand
	dim     int
	cov     *mat.SymDense
	factor  float64
	current []float64
}

func newChain(id int, m model.Model, rng *rand.Rand) *chain {
	dim := len(m.Params())
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, initialProposalSD*initialProposalSD*float64(dim)/(2.38*2.38))
	}
	return &chain{
		id:      id,
		model:   m,
		rng:     rng,
		dim:     dim,
		cov:     cov,
		factor:  1,
		current: m.Initial(rng),
	}
}

// proposal builds the Gaussian proposal for the current adaptation state,
// falling back to the diagonal if the full covariance is not positive
// definite.
func (c *chain) proposal() (*samplemv.ProposalNormal, error) {
	sigma := mat.NewSymDense(c.dim, nil)
	sigma.ScaleSym(c.factor*2.38*2.38/float64(c.dim), c.cov)
	if p, ok := samplemv.NewProposalNormal(sigma, c.rng); ok {
		return p, nil
	}

	logrus.Debugf("chain %d: proposal covariance not positive definite, using diagonal", c.id)
	diag := mat.NewSymDense(c.dim, nil)
	for i := 0; i < c.dim; i++ {
		v := sigma.At(i, i)
		if !(v > 0) || math.IsInf(v, 1) {
			v = initialProposalSD * initialProposalSD
		}
		diag.SetSym(i, i, v)
	}
	if p, ok := samplemv.NewProposalNormal(diag, c.rng); ok {
		return p, nil
	}
	return nil, fmt.Errorf("chain %d: cannot build proposal distribution", c.id)
}

// step draws n consecutive states and returns them with the number of
// accepted moves. The chain's current state advances to the last row.
func (c *chain) step(n int) (*mat.Dense, int, error) {
	prop, err := c.proposal()
	if err != nil {
		return nil, 0, err
	}
	batch := mat.NewDense(n, c.dim, nil)
	mh := samplemv.MetropolisHastingser{
		Initial:  append([]float64(nil), c.current...),
		Target:   logTarget{m: c.model},
		Proposal: prop,
		Src:      c.rng,
		Rate:     1,
	}
	mh.Sample(batch)

	accepted := 0
	prev := c.current
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		if !sameState(prev, row) {
			accepted++
		}
		prev = row
	}
	c.current = append([]float64(nil), batch.RawRowView(n-1)...)
	return batch, accepted, nil
}

// adapt updates the proposal from one warmup window.
func (c *chain) adapt(window *mat.Dense, accepted int) {
	rows, _ := window.Dims()
	acc := float64(accepted) / float64(rows)

	c.factor *= math.Exp(2 * (acc - targetAcceptance))
	c.factor = math.Min(math.Max(c.factor, 1e-4), 1e4)

	if accepted <= c.dim {
		logrus.Debugf("chain %d: window acceptance %.2f, too few moves to estimate covariance", c.id, acc)
		return
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, window, nil)
	for i := 0; i < c.dim; i++ {
		for j := i; j < c.dim; j++ {
			if v := cov.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				logrus.Debugf("chain %d: non-finite covariance, keeping previous proposal", c.id)
				return
			}
		}
		cov.SetSym(i, i, cov.At(i, i)+covJitter)
	}
	c.cov = &cov
	logrus.Debugf("chain %d: window acceptance %.2f, factor %.3g", c.id, acc, c.factor)
}

// run executes warmup and sampling. It returns the recorded rows and the
// post-warmup acceptance rate.
func (c *chain) run(ctx context.Context, cfg Config) ([]Draw, float64, error) {
	var rows []Draw
	record := func(batch *mat.Dense, firstIter int, warmup bool) {
		n, _ := batch.Dims()
		for i := 0; i < n; i++ {
			iter := firstIter + i
			if !warmup && cfg.Thin > 1 && (iter-cfg.Warmup)%cfg.Thin != 0 {
				continue
			}
			if warmup && !cfg.SaveWarmup {
				continue
			}
			rows = append(rows, Draw{
				Chain:     c.id,
				Iteration: iter,
				Warmup:    warmup,
				Values:    append([]float64(nil), batch.RawRowView(i)...),
			})
		}
	}

	window := adaptWindow(cfg.Warmup)
	iter := 1
	for done := 0; done < cfg.Warmup; {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		n := min(window, cfg.Warmup-done)
		batch, accepted, err := c.step(n)
		if err != nil {
			return nil, 0, err
		}
		record(batch, iter, true)
		c.adapt(batch, accepted)
		done += n
		iter += n
	}

	sampling := cfg.Iter - cfg.Warmup
	accepted := 0
	for done := 0; done < sampling; {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		n := min(maxWindow, sampling-done)
		batch, acc, err := c.step(n)
		if err != nil {
			return nil, 0, err
		}
		record(batch, iter, false)
		accepted += acc
		done += n
		iter += n
	}

	rate := 0.0
	if sampling > 0 {
		rate = float64(accepted) / float64(sampling)
	}
	return rows, rate, nil
}

// adaptWindow sizes the warmup adaptation window.
func adaptWindow(warmup int) int {
	return min(max(warmup/10, minWindow), maxWindow)
}

func sameState(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
