//go:build debug

package simrun

import (
	"fmt"

	"gossipsim/internal/gossip"
)

// debugState accumulates the cross-delivery history the debug invariant
// checks need: the highest freshness timestamp each node has ever reported
// for each subject, and the timestamp of the last bucket delivered.
type debugState struct {
	maxTimestamp    map[int]map[int]int
	lastDeliveredAt int
}

func newDebugState() *debugState {
	return &debugState{maxTimestamp: map[int]map[int]int{}}
}

// checkInvariants re-verifies invariants 2 through 6 after every delivery.
// This file is compiled in only with -tags debug; a production build pays
// nothing for it beyond the O(1) tally check Deliver always runs.
func (s *debugState) checkInvariants(d *Driver, msg *gossip.Message, now int) {
	if _, self := msg.Data[msg.To]; self {
		panic(&InvariantError{
			Invariant: "a message must never carry an entry about its own recipient",
			Detail:    fmt.Sprintf("to=%d data=%v", msg.To, msg.Data),
		})
	}

	if now < s.lastDeliveredAt {
		panic(&InvariantError{
			Invariant: "scheduler must process buckets in nondecreasing time order",
			Detail:    fmt.Sprintf("delivered at t=%d after t=%d", now, s.lastDeliveredAt),
		})
	}
	s.lastDeliveredAt = now

	for id, n := range d.nodes {
		if n.Knowledge[id] != n.OwnBit {
			panic(&InvariantError{
				Invariant: "a node's knowledge of itself must equal its own bit",
				Detail:    fmt.Sprintf("node %d: knowledge[self]=%v own_bit=%v", id, n.Knowledge[id], n.OwnBit),
			})
		}

		seen, ok := s.maxTimestamp[id]
		if !ok {
			seen = map[int]int{}
			s.maxTimestamp[id] = seen
		}
		for subject, ts := range n.Timestamps {
			if prior, ok := seen[subject]; ok && ts < prior {
				panic(&InvariantError{
					Invariant: "a node's timestamp for a subject must never decrease",
					Detail:    fmt.Sprintf("node %d subject %d: ts=%d, previously saw %d", id, subject, ts, prior),
				})
			}
			seen[subject] = ts
		}

		for _, l := range n.Links {
			if l.LastMessage != nil && l.LastRecvTime != l.LastSendTime+l.TotalLatency {
				panic(&InvariantError{
					Invariant: "a link's recv time must equal send time plus its fixed latency",
					Detail:    fmt.Sprintf("node %d link to %d: recv=%d send=%d latency=%d", id, l.To, l.LastRecvTime, l.LastSendTime, l.TotalLatency),
				})
			}
		}
	}
}
