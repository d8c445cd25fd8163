package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mcmc-sim/mcmc-sim/sim"
	"github.com/mcmc-sim/mcmc-sim/sim/diag"
	"github.com/mcmc-sim/mcmc-sim/sim/fitcache"
	"github.com/mcmc-sim/mcmc-sim/sim/model"
	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

var (
	modelName  string // Registered model to fit or inspect
	chains     int    // Number of chains
	iter       int    // Iterations per chain, warmup included
	warmup     int    // Warmup iterations per chain
	thin       int    // Keep every thin-th sampling draw
	seed       int64  // Sampler seed
	fitsDir    string // Directory holding cached fits
	dataPath   string // Ruggedness CSV
	refit      bool   // Resample even if a cached fit exists
	saveWarmup bool   // Store warmup draws in the fit
)

// fitCmd fits a registered model, reusing a cached fit when present
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a model with adaptive Metropolis, caching the draws",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		applyFitFlags(cmd, &cfg)

		entry, err := model.Lookup(modelName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		draws, cached, err := runFit(ctx, entry, cfg, refit)
		if err != nil {
			logrus.Fatalf("Fit of %s failed: %v", entry.Name, err)
		}
		if cached {
			logrus.Infof("Loaded %s from cache; pass --refit to resample", entry.CacheKey)
		}

		printSection(fmt.Sprintf("%s (%s)", entry.Name, entry.CacheKey), renderTable(summaryHeaders, summaryRows(diag.Summarize(draws))))
		fmt.Printf("mean acceptance rate: %s\n", formatFloat(draws.MeanAcceptance()))
		printChainMeans(draws)
		reportWarnings(diag.Warnings(draws, diag.DefaultWarningOptions()))
	},
}

// applyFitFlags overlays explicitly set flags on the loaded configuration.
func applyFitFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("chains") {
		cfg.Sampler.Chains = chains
	}
	if flags.Changed("iter") {
		cfg.Sampler.Iter = iter
	}
	if flags.Changed("warmup") {
		cfg.Sampler.Warmup = warmup
	}
	if flags.Changed("thin") {
		cfg.Sampler.Thin = thin
	}
	if flags.Changed("seed") {
		cfg.Sampler.Seed = seed
	}
	if flags.Changed("save-warmup") {
		cfg.Sampler.SaveWarmup = saveWarmup
	}
	if flags.Changed("fits-dir") {
		cfg.FitsDir = fitsDir
	}
	if flags.Changed("data") {
		cfg.Data = dataPath
	}
}

// buildModel constructs entry. Toy datasets are simulated from the data
// subsystem of the sampler seed, so a seed fixes both data and draws.
func buildModel(entry model.Entry, cfg Config) (*model.Linear, error) {
	env := model.BuildEnv{
		Rand: sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Sampler.Seed)).ForSubsystem(sim.SubsystemData),
	}
	if mc, ok := cfg.Models[entry.Name]; ok {
		env.Priors = mc.Priors
	}
	if entry.NeedsData {
		ds, err := model.LoadRugged(cfg.Data)
		if err != nil {
			return nil, err
		}
		env.Dataset = ds
	}
	return entry.Build(env)
}

// runFit returns the draws of entry, from cache unless force is set.
func runFit(ctx context.Context, entry model.Entry, cfg Config, force bool) (*sampler.Draws, bool, error) {
	m, err := buildModel(entry, cfg)
	if err != nil {
		return nil, false, err
	}

	var priors []string
	for _, p := range m.Priors() {
		priors = append(priors, fmt.Sprintf("%s ~ %s", p.Name, p.Prior))
	}
	header := &fitcache.Header{Config: cfg.Sampler, Priors: priors}

	cache := fitcache.New(cfg.FitsDir)
	return cache.GetOrFit(entry.CacheKey, force, header, func() (*sampler.Draws, error) {
		return sampler.Run(ctx, m, cfg.Sampler)
	})
}

var summaryHeaders = []string{"param", "mean", "sd", "2.5%", "50%", "97.5%", "draws"}

func summaryRows(sums []diag.ParamSummary) [][]string {
	rows := make([][]string, len(sums))
	for i, s := range sums {
		rows[i] = []string{
			s.Param,
			formatFloat(s.Mean),
			formatFloat(s.SD),
			formatFloat(s.Q2_5),
			formatFloat(s.Q50),
			formatFloat(s.Q97_5),
			fmt.Sprint(s.NumDraws),
		}
	}
	return rows
}

// printChainMeans shows per-chain posterior means; disagreeing chains are
// the first sign of a wild or non-identified posterior.
func printChainMeans(draws *sampler.Draws) {
	n := draws.PostWarmup().NumChains()
	if n < 2 {
		return
	}
	headers := []string{"param"}
	for c := 1; c <= n; c++ {
		headers = append(headers, fmt.Sprintf("chain %d", c))
	}
	rows, err := chainMeanRows(draws)
	if err != nil {
		logrus.Fatalf("Chain means failed: %v", err)
	}
	printSection("Chain means", renderTable(headers, rows))
}

func chainMeanRows(draws *sampler.Draws) ([][]string, error) {
	rows := make([][]string, 0, len(draws.Params))
	for _, p := range draws.Params {
		means, err := diag.ChainMeans(draws, p)
		if err != nil {
			return nil, err
		}
		row := []string{p}
		for _, m := range means {
			row = append(row, formatFloat(m))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func reportWarnings(warnings []diag.Warning) {
	for _, w := range warnings {
		logrus.Warn(w.String())
		fmt.Println(warnStyle.Render("warning: " + w.String()))
	}
}

func init() {
	defaults := sampler.DefaultConfig()
	fitCmd.Flags().StringVar(&modelName, "model", model.RuggedContinent, "Model to fit (see `models`)")
	fitCmd.Flags().IntVar(&chains, "chains", defaults.Chains, "Number of chains")
	fitCmd.Flags().IntVar(&iter, "iter", defaults.Iter, "Iterations per chain, warmup included")
	fitCmd.Flags().IntVar(&warmup, "warmup", defaults.Warmup, "Warmup iterations per chain")
	fitCmd.Flags().IntVar(&thin, "thin", defaults.Thin, "Keep every n-th sampling draw")
	fitCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Sampler seed")
	fitCmd.Flags().BoolVar(&saveWarmup, "save-warmup", defaults.SaveWarmup, "Store warmup draws with the fit")
	fitCmd.Flags().StringVar(&fitsDir, "fits-dir", "fits", "Directory of cached fits")
	fitCmd.Flags().StringVar(&dataPath, "data", defaultDataPath, "Ruggedness dataset (CSV)")
	fitCmd.Flags().BoolVar(&refit, "refit", false, "Resample even if a cached fit exists")

	rootCmd.AddCommand(fitCmd)
}
