// Package sampler draws posterior samples from a model.Model with an
// adaptive random-walk Metropolis sampler. The transition kernel is gonum's
// samplemv.MetropolisHastingser; this package adds warmup adaptation of the
// Gaussian proposal, multiple chains and the tabular Draws output.
//
// Chains run in parallel, one goroutine each. Every chain draws from its own
// RNG subsystem derived from Config.Seed, so results do not depend on
// goroutine scheduling.
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mcmc-sim/mcmc-sim/sim"
	"github.com/mcmc-sim/mcmc-sim/sim/model"
)

// Config controls a sampling run. Iter counts warmup, so each chain keeps
// (Iter - Warmup) / Thin sampling-phase draws.
type Config struct {
	Chains     int   `yaml:"chains"`
	Iter       int   `yaml:"iter"`
	Warmup     int   `yaml:"warmup"`
	Thin       int   `yaml:"thin"`
	Seed       int64 `yaml:"seed"`
	SaveWarmup bool  `yaml:"save_warmup"`
}

// DefaultConfig mirrors the usual four chains of 2000 iterations, half warmup.
func DefaultConfig() Config {
	return Config{Chains: 4, Iter: 2000, Warmup: 1000, Thin: 1, Seed: 9, SaveWarmup: true}
}

// Validate checks the run configuration.
func (c Config) Validate() error {
	if c.Chains < 1 {
		return fmt.Errorf("chains must be >= 1, got %d", c.Chains)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must be >= 0, got %d", c.Warmup)
	}
	if c.Iter <= c.Warmup {
		return fmt.Errorf("iter (%d) must exceed warmup (%d)", c.Iter, c.Warmup)
	}
	if c.Thin < 1 {
		return fmt.Errorf("thin must be >= 1, got %d", c.Thin)
	}
	return nil
}

// Run samples cfg.Chains chains of m in parallel and returns the combined
// draws, ordered by chain then iteration.
func Run(ctx context.Context, m model.Model, cfg Config) (*Draws, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(m.Params()) == 0 {
		return nil, fmt.Errorf("model %s has no parameters", m.Name())
	}

	// PartitionedRNG is not thread-safe: resolve every chain's RNG up front.
	rngs := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	chains := make([]*chain, cfg.Chains)
	for i := range chains {
		id := i + 1
		chains[i] = newChain(id, m, rngs.ForSubsystem(sim.SubsystemChain(id)))
	}

	logrus.Infof("Sampling %s: %d chains, iter=%d, warmup=%d, thin=%d, seed=%d",
		m.Name(), cfg.Chains, cfg.Iter, cfg.Warmup, cfg.Thin, cfg.Seed)
	start := time.Now()

	rows := make([][]Draw, cfg.Chains)
	acceptance := make([]float64, cfg.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chains {
		g.Go(func() error {
			r, acc, err := c.run(gctx, cfg)
			if err != nil {
				return fmt.Errorf("chain %d: %w", c.id, err)
			}
			rows[i] = r
			acceptance[i] = acc
			logrus.WithFields(logrus.Fields{"chain": c.id, "acceptance": acc}).Info("Chain finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	draws := &Draws{Model: m.Name(), Params: m.Params(), Acceptance: acceptance}
	for _, r := range rows {
		draws.Rows = append(draws.Rows, r...)
	}
	logrus.Infof("Sampling %s finished in %v", m.Name(), time.Since(start).Round(time.Millisecond))
	return draws, nil
}
