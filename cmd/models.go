package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mcmc-sim/mcmc-sim/sim/model"
)

// modelsCmd lists the registered models
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available to fit and their priors",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		rows, err := modelRows(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Println(renderTable([]string{"model", "fit", "priors", "description"}, rows))
	},
}

// modelRows describes every registered model. Priors reflect overrides from
// the configuration; models that need the dataset list their default priors.
func modelRows(cfg Config) ([][]string, error) {
	var rows [][]string
	for _, name := range model.Names() {
		entry, err := model.Lookup(name)
		if err != nil {
			return nil, err
		}
		priors := "(needs dataset)"
		if !entry.NeedsData {
			m, err := buildModel(entry, cfg)
			if err != nil {
				return nil, err
			}
			var parts []string
			for _, p := range m.Priors() {
				parts = append(parts, fmt.Sprintf("%s ~ %s", p.Name, p.Prior))
			}
			priors = strings.Join(parts, "; ")
		}
		rows = append(rows, []string{entry.Name, entry.CacheKey, priors, entry.Description})
	}
	return rows, nil
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
