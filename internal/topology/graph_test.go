package topology

import (
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

func TestBuildNodeSpecsAssignsBitByParity(t *testing.T) {
	specs := BuildNodeSpecs(4, 5, 50, 2, 2, rand.New(rand.NewSource(1)))
	for _, s := range specs {
		wantEven := -1
		if s.ID%2 == 1 {
			wantEven = 1
		}
		if s.InitialBit != wantEven {
			t.Fatalf("node %d: InitialBit = %d, want %d", s.ID, s.InitialBit, wantEven)
		}
	}
}

func TestBuildNodeSpecsTrustedSetExcludesSelfAndDuplicates(t *testing.T) {
	specs := BuildNodeSpecs(10, 5, 50, 3, 5, rand.New(rand.NewSource(42)))
	for _, s := range specs {
		if slices.Contains(s.TrustedSet, s.ID) {
			t.Fatalf("node %d: trusted set must not contain itself, got %v", s.ID, s.TrustedSet)
		}
		seen := map[int]bool{}
		for _, id := range s.TrustedSet {
			if seen[id] {
				t.Fatalf("node %d: duplicate trusted-set entry %d", s.ID, id)
			}
			seen[id] = true
		}
		if len(s.TrustedSet) < 3 || len(s.TrustedSet) > 5 {
			t.Fatalf("node %d: trusted set size %d out of [3,5]", s.ID, len(s.TrustedSet))
		}
	}
}

func TestBuildNodeSpecsIsDeterministicForAFixedSeed(t *testing.T) {
	a := BuildNodeSpecs(20, 5, 50, 3, 5, rand.New(rand.NewSource(7)))
	b := BuildNodeSpecs(20, 5, 50, 3, 5, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i].E2CLatency != b[i].E2CLatency || !slices.Equal(a[i].TrustedSet, b[i].TrustedSet) {
			t.Fatalf("same seed produced different specs at index %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestBuildEdgesExcludesSelfLoops(t *testing.T) {
	specs := BuildNodeSpecs(8, 5, 50, 3, 4, rand.New(rand.NewSource(3)))
	edges := BuildEdges(specs, 3, 5, 200, rand.New(rand.NewSource(9)))
	for _, e := range edges {
		if e.A == e.B {
			t.Fatalf("edge must not be a self-loop: %+v", e)
		}
	}
}

func TestBuildEdgesLatencyIsSumOfBothEndpointsE2CPlusC2C(t *testing.T) {
	specs := BuildNodeSpecs(6, 10, 10, 3, 3, rand.New(rand.NewSource(11))) // fixed E2C at 10
	edges := BuildEdges(specs, 2, 50, 50, rand.New(rand.NewSource(12)))   // fixed C2C at 50
	for _, e := range edges {
		want := 10 + 10 + 50
		if e.TotalLatency != want {
			t.Fatalf("edge %+v: latency = %d, want %d", e, e.TotalLatency, want)
		}
	}
}
