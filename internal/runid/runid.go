// Package runid derives the per-run identifier and the per-phase RNG
// sub-seeds: a single configured seed is expanded into independent streams
// for the topology builder's RNG consumption phases (node/trusted-set
// construction, then link construction) without disturbing their relative
// consumption order.
package runid

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// New returns a fresh UUID used purely for log correlation. It never
// influences simulation outcomes - determinism rests entirely on Config.Seed.
func New() string {
	return uuid.NewString()
}

// Phase names for sub-seed derivation. PhaseTopology covers both node
// construction and trusted-set selection, since topology.BuildNodeSpecs
// draws both from a single *rand.Rand in that order; PhaseLinks covers the
// separate topology.BuildEdges call, giving link construction its own
// independent stream.
const (
	PhaseTopology = "topology"
	PhaseLinks    = "links"
)

// SubSeed derives a phase-independent int64 seed from a single base seed
// and a phase label via xxhash, so that changing one phase's draw count
// (e.g. a different UNL range) never perturbs another phase's random
// stream - a property a single shared *rand.Rand would not give.
func SubSeed(base int64, phase string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	h := xxhash.New()
	h.Write(buf[:])
	h.Write([]byte(phase))
	return int64(h.Sum64())
}
