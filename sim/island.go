package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// DefaultIslands is the size of King Markov's archipelago.
const DefaultIslands = 10

// IslandWalk configures the King Markov random walk: a Metropolis sampler on
// islands 1..Islands whose unnormalized target density is the island index.
type IslandWalk struct {
	Islands int // number of islands in the ring (>= 2)
	Start   int // starting island, 1-based
	Steps   int // number of weeks to simulate
}

// WalkResult holds the visited sequence and its tallies.
type WalkResult struct {
	Islands   int
	Positions []int // Positions[w] is the island occupied during week w
	Counts    []int // Counts[i-1] is the number of weeks spent on island i
	Accepted  int   // number of accepted moves
}

// NewIslandWalk validates and returns an IslandWalk.
func NewIslandWalk(islands, start, steps int) (*IslandWalk, error) {
	if islands < 2 {
		return nil, fmt.Errorf("island count must be >= 2, got %d", islands)
	}
	if start < 1 || start > islands {
		return nil, fmt.Errorf("start island %d outside [1, %d]", start, islands)
	}
	if steps < 0 {
		return nil, fmt.Errorf("steps must be >= 0, got %d", steps)
	}
	return &IslandWalk{Islands: islands, Start: start, Steps: steps}, nil
}

// Run simulates the walk. The island occupied at the start of each week is
// recorded before the move for that week is attempted.
func (w *IslandWalk) Run(rng *rand.Rand) *WalkResult {
	res := &WalkResult{
		Islands:   w.Islands,
		Positions: make([]int, w.Steps),
		Counts:    make([]int, w.Islands),
	}

	current := w.Start
	for week := 0; week < w.Steps; week++ {
		res.Positions[week] = current
		res.Counts[current-1]++

		proposal := w.propose(current, rng)
		if rng.Float64() < float64(proposal)/float64(current) {
			current = proposal
			res.Accepted++
		}
	}

	logrus.Debugf("island walk: %d steps, %d accepted moves", w.Steps, res.Accepted)
	return res
}

// propose flips a coin for a clockwise or counterclockwise neighbour and
// wraps around the ring.
func (w *IslandWalk) propose(current int, rng *rand.Rand) int {
	proposal := current + 1
	if rng.IntN(2) == 0 {
		proposal = current - 1
	}
	if proposal < 1 {
		proposal = w.Islands
	}
	if proposal > w.Islands {
		proposal = 1
	}
	return proposal
}

// Frequencies returns the fraction of weeks spent on each island (index i-1).
func (r *WalkResult) Frequencies() []float64 {
	freq := make([]float64, len(r.Counts))
	total := len(r.Positions)
	if total == 0 {
		return freq
	}
	for i, c := range r.Counts {
		freq[i] = float64(c) / float64(total)
	}
	return freq
}

// AcceptanceRate returns the fraction of accepted proposals.
func (r *WalkResult) AcceptanceRate() float64 {
	if len(r.Positions) == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(len(r.Positions))
}

// Weeks returns the first k positions, or all of them if fewer were recorded.
func (r *WalkResult) Weeks(k int) []int {
	if k < 0 {
		k = 0
	}
	if k > len(r.Positions) {
		k = len(r.Positions)
	}
	return r.Positions[:k]
}

// ExpectedFrequencies returns the stationary distribution of the walk:
// island i is visited with probability i / (n(n+1)/2).
func ExpectedFrequencies(islands int) []float64 {
	expected := make([]float64, islands)
	norm := float64(islands*(islands+1)) / 2
	for i := range expected {
		expected[i] = float64(i+1) / norm
	}
	return expected
}
