package topology

import (
	"math/rand"

	"golang.org/x/exp/slices"
)

// NodeSpec is the startup-time description of one participant: its
// end-to-core latency, initial bit (by parity of id), and curated trusted
// set. Topology construction never touches a node's live consensus state -
// it only hands the driver the inputs needed to build one.
type NodeSpec struct {
	ID         int
	E2CLatency int
	// InitialBit is -1 for even ids, +1 for odd ids.
	InitialBit int
	TrustedSet []int
}

// BuildNodeSpecs draws, in order, one end-to-core latency per node id
// 0..n-1 and then one trusted-set per node id 0..n-1. Both passes draw from
// rng in id order, so a given seed always reproduces the same specs.
func BuildNodeSpecs(n, e2cMin, e2cMax, unlMin, unlMax int, rng *rand.Rand) []NodeSpec {
	specs := make([]NodeSpec, n)
	for i := 0; i < n; i++ {
		bit := -1
		if i%2 == 1 {
			bit = 1
		}
		specs[i] = NodeSpec{
			ID:         i,
			E2CLatency: uniform(rng, e2cMin, e2cMax),
			InitialBit: bit,
		}
	}
	for i := range specs {
		specs[i].TrustedSet = drawDistinctPeers(rng, n, specs[i].ID, uniform(rng, unlMin, unlMax))
	}
	return specs
}

// Edge is one undirected connection drawn during link assembly; the driver
// materializes it as two mirrored, independently-buffered Link records (one
// per endpoint) sharing TotalLatency.
type Edge struct {
	A, B         int
	TotalLatency int
}

// BuildEdges draws, for each node in order, outboundLinks distinct peers and
// a fresh core-to-core latency sample for each. A node may end up with more
// than outboundLinks total links if peers independently chose to link to
// it - the reverse direction is never deduplicated.
func BuildEdges(specs []NodeSpec, outboundLinks, c2cMin, c2cMax int, rng *rand.Rand) []Edge {
	n := len(specs)
	edges := make([]Edge, 0, n*outboundLinks)
	for _, spec := range specs {
		peers := drawDistinctPeers(rng, n, spec.ID, outboundLinks)
		for _, peer := range peers {
			latency := spec.E2CLatency + specs[peer].E2CLatency + uniform(rng, c2cMin, c2cMax)
			edges = append(edges, Edge{A: spec.ID, B: peer, TotalLatency: latency})
		}
	}
	return edges
}

// drawDistinctPeers draws count distinct ids in [0, n) excluding self via
// rejection sampling, preserving draw order (and hence RNG consumption
// order) across repeated calls against the same rng.
func drawDistinctPeers(rng *rand.Rand, n, self, count int) []int {
	peers := make([]int, 0, count)
	for len(peers) < count {
		candidate := rng.Intn(n)
		if candidate == self || slices.Contains(peers, candidate) {
			continue
		}
		peers = append(peers, candidate)
	}
	return peers
}

// uniform draws an integer uniformly in [min, max] inclusive.
func uniform(rng *rand.Rand, min, max int) int {
	if min == max {
		return min
	}
	return min + rng.Intn(max-min+1)
}
