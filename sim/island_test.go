package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWalkRNG(seed int64) *PartitionedRNG {
	return NewPartitionedRNG(NewSimulationKey(seed))
}

func TestNewIslandWalk_Validation(t *testing.T) {
	tests := []struct {
		name                  string
		islands, start, steps int
		wantErr               bool
	}{
		{"default archipelago", 10, 10, 100, false},
		{"two islands", 2, 1, 5, false},
		{"zero steps", 10, 3, 0, false},
		{"single island", 1, 1, 10, true},
		{"start below range", 10, 0, 10, true},
		{"start above range", 10, 11, 10, true},
		{"negative steps", 10, 5, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIslandWalk(tt.islands, tt.start, tt.steps)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewIslandWalk(%d, %d, %d) err = %v, wantErr %v", tt.islands, tt.start, tt.steps, err, tt.wantErr)
			}
		})
	}
}

func TestIslandWalk_PositionsStayInRange(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 2024} {
		walk, err := NewIslandWalk(DefaultIslands, 10, 5000)
		require.NoError(t, err)
		res := walk.Run(newWalkRNG(seed).ForSubsystem(SubsystemIsland))

		for week, pos := range res.Positions {
			if pos < 1 || pos > DefaultIslands {
				t.Fatalf("seed %d week %d: position %d outside [1, %d]", seed, week, pos, DefaultIslands)
			}
		}
	}
}

func TestIslandWalk_FirstWeekIsStart(t *testing.T) {
	walk, err := NewIslandWalk(DefaultIslands, 4, 10)
	require.NoError(t, err)
	res := walk.Run(newWalkRNG(3).ForSubsystem(SubsystemIsland))
	assert.Equal(t, 4, res.Positions[0])
}

func TestIslandWalk_MovesAreNeighbours(t *testing.T) {
	// Every change of island is a ±1 step on the ring.
	walk, err := NewIslandWalk(DefaultIslands, 1, 20000)
	require.NoError(t, err)
	res := walk.Run(newWalkRNG(11).ForSubsystem(SubsystemIsland))

	for i := 1; i < len(res.Positions); i++ {
		prev, cur := res.Positions[i-1], res.Positions[i]
		if prev == cur {
			continue
		}
		d := cur - prev
		if d != 1 && d != -1 && !(prev == 1 && cur == DefaultIslands) && !(prev == DefaultIslands && cur == 1) {
			t.Fatalf("week %d: jump from %d to %d is not a neighbour move", i, prev, cur)
		}
	}
}

func TestIslandWalk_UpwardMovesAlwaysAccepted(t *testing.T) {
	// From island 1 every proposal (2 or the wrap to 10) is uphill, so the
	// king never stays on island 1 two weeks in a row.
	walk, err := NewIslandWalk(DefaultIslands, 1, 50000)
	require.NoError(t, err)
	res := walk.Run(newWalkRNG(5).ForSubsystem(SubsystemIsland))

	for i := 1; i < len(res.Positions); i++ {
		if res.Positions[i-1] == 1 && res.Positions[i] == 1 {
			t.Fatalf("week %d: stayed on island 1", i)
		}
	}
}

func TestIslandWalk_ConvergesToIslandIndex(t *testing.T) {
	// GIVEN King Markov starting on island 10 with a fixed seed
	walk, err := NewIslandWalk(DefaultIslands, 10, 100000)
	require.NoError(t, err)

	// WHEN he campaigns for 100,000 weeks
	res := walk.Run(newWalkRNG(42).ForSubsystem(SubsystemIsland))

	// THEN the share of weeks on island i is close to i/55
	freq := res.Frequencies()
	assert.InDelta(t, 10.0/55, freq[9], 0.02)
	assert.InDelta(t, 1.0/55, freq[0], 0.01)

	expected := ExpectedFrequencies(DefaultIslands)
	for i := range freq {
		if math.Abs(freq[i]-expected[i]) > 0.02 {
			t.Errorf("island %d: frequency %.4f, want ≈ %.4f", i+1, freq[i], expected[i])
		}
	}
}

func TestIslandWalk_CountsSumToSteps(t *testing.T) {
	walk, err := NewIslandWalk(7, 3, 1234)
	require.NoError(t, err)
	res := walk.Run(newWalkRNG(9).ForSubsystem(SubsystemIsland))

	total := 0
	for _, c := range res.Counts {
		total += c
	}
	assert.Equal(t, 1234, total)
	assert.Len(t, res.Counts, 7)
	assert.LessOrEqual(t, res.Accepted, 1234)
}

func TestIslandWalk_SameSeedSameWalk(t *testing.T) {
	walk, err := NewIslandWalk(DefaultIslands, 10, 1000)
	require.NoError(t, err)

	a := walk.Run(newWalkRNG(42).ForSubsystem(SubsystemIsland))
	b := walk.Run(newWalkRNG(42).ForSubsystem(SubsystemIsland))
	assert.Equal(t, a.Positions, b.Positions)
}

func TestIslandWalk_ZeroSteps(t *testing.T) {
	walk, err := NewIslandWalk(DefaultIslands, 10, 0)
	require.NoError(t, err)
	res := walk.Run(newWalkRNG(1).ForSubsystem(SubsystemIsland))

	assert.Empty(t, res.Positions)
	assert.Equal(t, 0.0, res.AcceptanceRate())
	for _, f := range res.Frequencies() {
		assert.Equal(t, 0.0, f)
	}
}

func TestWalkResult_Weeks(t *testing.T) {
	res := &WalkResult{Positions: []int{10, 9, 9, 8}}
	assert.Equal(t, []int{10, 9}, res.Weeks(2))
	assert.Equal(t, []int{10, 9, 9, 8}, res.Weeks(100))
	assert.Empty(t, res.Weeks(-3))
}

func TestExpectedFrequencies_SumsToOne(t *testing.T) {
	for _, n := range []int{2, 5, 10, 25} {
		sum := 0.0
		for _, p := range ExpectedFrequencies(n) {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "n=%d", n)
	}
	assert.InDelta(t, 10.0/55, ExpectedFrequencies(10)[9], 1e-12)
}
