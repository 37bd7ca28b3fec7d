//go:build !debug

package simrun

import "gossipsim/internal/gossip"

// debugState is a zero-size stand-in outside debug builds: checkInvariants
// becomes a no-op that the compiler inlines away, leaving only the O(1)
// tally check Deliver always runs.
type debugState struct{}

func newDebugState() *debugState {
	return &debugState{}
}

func (s *debugState) checkInvariants(d *Driver, msg *gossip.Message, now int) {}
