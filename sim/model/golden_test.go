package model

import (
	"fmt"
	"testing"

	"github.com/mcmc-sim/mcmc-sim/sim/internal/testutil"
)

// TestLogPosterior_GoldenDataset checks LogPosterior against values
// computed independently from the closed-form densities.
func TestLogPosterior_GoldenDataset(t *testing.T) {
	golden := testutil.LoadGoldenDataset(t)
	if len(golden.Tests) == 0 {
		t.Fatal("golden dataset has no test cases")
	}

	ds, err := LoadRugged(testutil.RepoPath(t, golden.Dataset))
	if err != nil {
		t.Fatalf("loading golden dataset CSV: %v", err)
	}

	for i, tc := range golden.Tests {
		t.Run(fmt.Sprintf("%s/%d", tc.Model, i), func(t *testing.T) {
			entry, err := Lookup(tc.Model)
			if err != nil {
				t.Fatal(err)
			}
			m, err := entry.Build(BuildEnv{Dataset: ds})
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertFloat64Equal(t, "log posterior", tc.LogPosterior, m.LogPosterior(tc.Theta), 1e-9)
		})
	}
}
