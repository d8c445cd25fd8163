// Package sim provides the Markov chain Monte Carlo notebook's core:
// deterministic random streams and King Markov's island walk.
//
// # Reading Guide
//
// Start with these files:
//   - rng.go: PartitionedRNG, one isolated math/rand/v2 stream per subsystem
//   - island.go: the Metropolis walk on a ring of islands and its tallies
//
// # Architecture
//
// The sim package holds the shared primitives; the posterior machinery
// lives in sub-packages:
//   - sim/prior/: prior distributions built from YAML DistSpecs
//   - sim/model/: the ruggedness dataset and the registered linear models
//   - sim/sampler/: parallel adaptive random-walk Metropolis chains
//   - sim/diag/: summaries, autocorrelation, pairs, trace rank and warnings
//   - sim/fitcache/: on-disk fits (YAML header + CSV draws)
//   - sim/concentration/: concentration of measure in high dimensions
//
// Every random draw comes from a named subsystem of a PartitionedRNG, so a
// seed reproduces a walk, a simulated dataset or a set of chains exactly,
// regardless of goroutine scheduling.
package sim
