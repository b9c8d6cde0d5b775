package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// RunKey derives the key of one run in a batch: master seed plus run index.
// Retries (attempt > 0) are mixed with a hash so a retried run never replays
// the randomness of the attempt that failed.
func RunKey(masterSeed int64, runIndex, attempt int) SimulationKey {
	key := masterSeed + int64(runIndex)
	if attempt > 0 {
		key ^= fnv1a64(fmt.Sprintf("attempt_%d", attempt))
	}
	return SimulationKey(key)
}

// === Subsystem Constants ===

const (
	// SubsystemParams is the RNG subsystem for per-run parameter generation.
	// Uses the run key directly.
	SubsystemParams = "params"

	// SubsystemFacility draws facility layout randomness (efficiency factors).
	SubsystemFacility = "facility"

	// SubsystemRestock drives the restocking controller and its restock jobs.
	SubsystemRestock = "restock"

	// SubsystemAccident drives the facility accident injector.
	SubsystemAccident = "accident"

	// SubsystemBatch draws batch-level randomness such as the run count.
	SubsystemBatch = "batch"
)

// SubsystemWorkstation returns the subsystem name for workstation N.
func SubsystemWorkstation(id int) string {
	return fmt.Sprintf("workstation_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemParams: uses the key directly
//   - For all other subsystems: key XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemParams {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
