package cmd

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mcmc-sim/mcmc-sim/sim/diag"
	"github.com/mcmc-sim/mcmc-sim/sim/fitcache"
	"github.com/mcmc-sim/mcmc-sim/sim/model"
)

var (
	diagModel   string // Model whose cached fit is inspected
	diagFitsDir string // Directory holding cached fits
	acfLags     int    // Maximum autocorrelation lag, 0 to skip
	showPairs   bool   // Print the pairs correlation matrix
	trankBins   int    // Trace-rank histogram bins, 0 to skip
)

// diagnoseCmd prints diagnostics of a cached fit
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Print autocorrelation, pairs and trace-rank diagnostics of a cached fit",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		if cmd.Flags().Changed("fits-dir") {
			cfg.FitsDir = diagFitsDir
		}
		entry, err := model.Lookup(diagModel)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		header, draws, ok, err := fitcache.New(cfg.FitsDir).Load(entry.CacheKey)
		if err != nil {
			logrus.Fatalf("Failed to load fit %s: %v", entry.CacheKey, err)
		}
		if !ok {
			logrus.Fatalf("No cached fit for %s in %s; run `fit --model %s` first", entry.Name, cfg.FitsDir, entry.Name)
		}
		logrus.Infof("Loaded %s fitted at %s (%d chains, seed=%d)", entry.CacheKey, header.CreatedAt, header.Config.Chains, header.Config.Seed)

		if acfLags > 0 {
			table, err := diag.AutocorrelationTable(draws, acfLags)
			if err != nil {
				logrus.Fatalf("Autocorrelation failed: %v", err)
			}
			printSection("Autocorrelation", renderTable(acfHeaders(acfLags), acfRows(table)))
		}
		if showPairs {
			pairs, err := diag.Pairs(draws)
			if err != nil {
				logrus.Fatalf("Pairs failed: %v", err)
			}
			printSection("Posterior correlations", renderTable(append([]string{""}, pairs.Params...), pairsRows(pairs)))
		}
		if trankBins > 0 {
			for _, p := range draws.Params {
				tr, err := diag.TraceRankHistogram(draws, p, trankBins)
				if err != nil {
					logrus.Fatalf("Trace rank of %s failed: %v", p, err)
				}
				printSection("Trace rank: "+p, renderTable(trankHeaders(trankBins), trankRows(tr)))
			}
		}
		printChainMeans(draws)
		reportWarnings(diag.Warnings(draws, diag.DefaultWarningOptions()))
	},
}

func acfHeaders(maxLag int) []string {
	h := []string{"param", "chain"}
	for k := 0; k <= maxLag; k++ {
		h = append(h, "lag "+strconv.Itoa(k))
	}
	return h
}

func acfRows(table []diag.ChainACF) [][]string {
	rows := make([][]string, len(table))
	for i, r := range table {
		row := []string{r.Param, strconv.Itoa(r.Chain)}
		for _, v := range r.ACF {
			row = append(row, formatFloat(v))
		}
		rows[i] = row
	}
	return rows
}

func pairsRows(p *diag.PairsMatrix) [][]string {
	rows := make([][]string, len(p.Params))
	for i, name := range p.Params {
		row := []string{name}
		for j := range p.Params {
			row = append(row, formatFloat(p.Corr.At(i, j)))
		}
		rows[i] = row
	}
	return rows
}

func trankHeaders(bins int) []string {
	h := []string{"chain"}
	for b := 1; b <= bins; b++ {
		h = append(h, fmt.Sprintf("bin %d", b))
	}
	return h
}

func trankRows(tr *diag.TraceRank) [][]string {
	rows := make([][]string, len(tr.Counts))
	for c, counts := range tr.Counts {
		row := []string{strconv.Itoa(c + 1)}
		for _, n := range counts {
			row = append(row, strconv.Itoa(n))
		}
		rows[c] = row
	}
	return rows
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagModel, "model", model.RuggedContinent, "Model whose fit to inspect")
	diagnoseCmd.Flags().StringVar(&diagFitsDir, "fits-dir", "fits", "Directory of cached fits")
	diagnoseCmd.Flags().IntVar(&acfLags, "acf", 10, "Maximum autocorrelation lag (0 to skip)")
	diagnoseCmd.Flags().BoolVar(&showPairs, "pairs", true, "Print posterior correlations")
	diagnoseCmd.Flags().IntVar(&trankBins, "trank", 10, "Trace-rank histogram bins (0 to skip)")

	rootCmd.AddCommand(diagnoseCmd)
}
