// Package testutil provides shared test infrastructure: the golden
// log-posterior dataset and float assertion helpers used across the sim/
// test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_logpost.json.
type GoldenDataset struct {
	// Dataset is the ruggedness CSV, relative to the repo root, that the
	// data-driven cases were computed from.
	Dataset string           `json:"dataset"`
	Tests   []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is an unnormalized log posterior evaluated independently
// at a fixed parameter vector.
type GoldenTestCase struct {
	Model        string    `json:"model"`
	Theta        []float64 `json:"theta"`
	LogPosterior float64   `json:"log_posterior"`
}

// RepoPath joins parts onto the repository root.
// The path is resolved relative to this source file: sim/internal/testutil/ → repo root.
func RepoPath(t *testing.T, parts ...string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	root := filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
	return filepath.Join(append([]string{root}, parts...)...)
}

// LoadGoldenDataset loads the golden dataset from the repo testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	data, err := os.ReadFile(RepoPath(t, "testdata", "golden_logpost.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
