package sim

import (
	"math"
	"math/rand/v2"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemChain(0)).Float64()
		v2 := rng2.ForSubsystem(SubsystemChain(0)).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from chain 0 doesn't affect chain 1
	rngA := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemChain(0)).Float64()
	}
	aChain1First := rngA.ForSubsystem(SubsystemChain(1)).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	expectedFirst := fresh.ForSubsystem(SubsystemChain(1)).Float64()

	if aChain1First != expectedFirst {
		t.Errorf("chain_1 first value = %v, want %v (isolation broken)", aChain1First, expectedFirst)
	}
}

func TestPartitionedRNG_ChainsDrawDistinctStreams(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	a := rng.ForSubsystem(SubsystemChain(0)).Uint64()
	b := rng.ForSubsystem(SubsystemChain(1)).Uint64()
	if a == b {
		t.Error("chain_0 and chain_1 produced the same first value")
	}
}

func TestPartitionedRNG_IslandUsesMasterSeed(t *testing.T) {
	// BDD: "island" subsystem is PCG(seed, 0)
	seed := int64(42)
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	island := rng.ForSubsystem(SubsystemIsland)
	direct := rand.New(rand.NewPCG(uint64(seed), 0))

	for i := 0; i < 10; i++ {
		if got, want := island.Float64(), direct.Float64(); got != want {
			t.Errorf("Value %d: island RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	rng1 := rng.ForSubsystem(SubsystemData)
	rng2 := rng.ForSubsystem(SubsystemData)

	if rng1 != rng2 {
		t.Error("ForSubsystem returned different instances for same name")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	seed := int64(12345)
	rng := NewPartitionedRNG(NewSimulationKey(seed))

	if rng.Key() != SimulationKey(seed) {
		t.Errorf("Key() = %v, want %v", rng.Key(), seed)
	}
}

func TestPartitionedRNG_NegativeSeed(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(math.MinInt64))

	val := rng.ForSubsystem(SubsystemIsland).Float64()
	if val < 0 || val >= 1 {
		t.Errorf("Float64() returned %v, want [0, 1)", val)
	}
}

func TestPartitionedRNG_LazyInitialization(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	if len(rng.subsystems) != 0 {
		t.Errorf("New PartitionedRNG has %d subsystems, want 0", len(rng.subsystems))
	}

	rng.ForSubsystem(SubsystemIsland)

	if len(rng.subsystems) != 1 {
		t.Errorf("After one ForSubsystem call, have %d subsystems, want 1", len(rng.subsystems))
	}
}

// === fnv1a64 Tests ===

func TestFnv1a64_Collision(t *testing.T) {
	names := []string{
		SubsystemData,
		SubsystemConcentration,
		SubsystemChain(0),
		SubsystemChain(1),
		SubsystemChain(100),
		"",
	}

	hashes := make(map[uint64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemChain(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{0, "chain_0"},
		{3, "chain_3"},
		{100, "chain_100"},
	}

	for _, tt := range tests {
		if got := SubsystemChain(tt.id); got != tt.want {
			t.Errorf("SubsystemChain(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// === Benchmark ===

func BenchmarkPartitionedRNG_ForSubsystem_CacheHit(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	rng.ForSubsystem(SubsystemIsland)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForSubsystem(SubsystemIsland)
	}
}
