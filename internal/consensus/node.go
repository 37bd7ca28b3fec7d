// Package consensus implements the per-participant state and the
// receive-and-react update rule that drives the simulation forward: a node
// updates its knowledge of its peers, decides whether to flip its own
// position, and gossips whatever changed to its own peers in turn.
package consensus

import (
	"gossipsim/internal/gossip"
	"gossipsim/internal/schedule"
	"gossipsim/internal/topology"
)

// Params bundles the simulation constants Receive needs that are not
// per-node state: the malicious-contrarian cutoff, the trusted-set
// activation threshold, the flip hysteresis, and the link send parameters.
type Params struct {
	NumMaliciousNodes int
	UNLThresh         int
	SelfWeight        int
	Send              topology.SendParams
}

// Tally holds the two global counters maintained incrementally by Step 3 of
// Receive. It must not be mutated from anywhere else.
type Tally struct {
	Positive int
	Negative int
}

// Node is one participant: its own bit, its per-subject knowledge and
// freshness timestamps, its curated trusted set, and its outbound links.
type Node struct {
	ID         int
	OwnBit     gossip.Bit
	Knowledge  map[int]gossip.Bit
	Timestamps map[int]int
	TrustedSet []int
	Links      []*topology.Link

	Sent     int
	Received int
}

// New creates a node with its own bit already recorded in its knowledge and
// timestamp vectors: a node always knows its own current position.
func New(id int, initialBit gossip.Bit, trustedSet []int, links []*topology.Link) *Node {
	n := &Node{
		ID:         id,
		OwnBit:     initialBit,
		Knowledge:  map[int]gossip.Bit{id: initialBit},
		Timestamps: map[int]int{id: 1},
		TrustedSet: trustedSet,
		Links:      links,
	}
	return n
}

// InitialBroadcast returns the single-entry update a node sends about
// itself at startup, before it has heard from any peer.
func (n *Node) InitialBroadcast() map[int]gossip.NodeState {
	return map[int]gossip.NodeState{
		n.ID: {Subject: n.ID, Timestamp: n.Timestamps[n.ID], Bit: n.OwnBit},
	}
}

// LinkTo returns the outbound link to peer id, or nil if there is none.
func (n *Node) LinkTo(id int) *topology.Link {
	for _, l := range n.Links {
		if l.To == id {
			return l
		}
	}
	return nil
}

// Receive processes one incoming message: it accounts for the delivery,
// prunes a still-queued reply to the sender that the sender just rendered
// stale, folds in whatever the sender told us that we didn't already know,
// runs the decision rule over the result, and gossips any change onward to
// our own peers.
func (n *Node) Receive(msg *gossip.Message, now int, sch *schedule.Scheduler, p Params, tally *Tally) {
	n.Received++

	// The sender just told us what it would say - if we still have an
	// editable reply queued back to it, that reply is now redundant.
	if back := n.LinkTo(msg.From); back != nil && back.Suppressible(now) {
		back.LastMessage.Sub(msg.Data)
	}

	changes := map[int]gossip.NodeState{}
	for k, ns := range msg.Data {
		if k == n.ID {
			continue
		}
		if ns.Timestamp > n.Timestamps[k] && ns.Bit != n.Knowledge[k] {
			n.Knowledge[k] = ns.Bit
			n.Timestamps[k] = ns.Timestamp
			changes[k] = ns
		}
	}
	if len(changes) == 0 {
		return
	}

	flipped := n.decide(now, p, changes, tally)

	for _, link := range n.Links {
		if !flipped && link.To == msg.From {
			continue
		}
		merged := link.Editable(now)
		link.QueueOrMerge(sch, n.ID, changes, now, flipped, p.Send)
		if !merged {
			n.Sent++
		}
	}
}

// decide counts the trusted set's balance, applies the malicious-contrarian
// inversion and the time-bias tiebreak, and flips OwnBit (with hysteresis
// from SelfWeight) once the trusted set carries enough data and the balance
// clears the threshold. On a flip, the new self NodeState is recorded into
// changes so the caller gossips it onward alongside whatever triggered it.
func (n *Node) decide(now int, p Params, changes map[int]gossip.NodeState, tally *Tally) (flipped bool) {
	trustedCount := 0
	balance := 0
	for _, k := range n.TrustedSet {
		switch n.Knowledge[k] {
		case gossip.Positive:
			trustedCount++
			balance++
		case gossip.Negative:
			trustedCount++
			balance--
		}
	}

	if n.ID < p.NumMaliciousNodes {
		balance = -balance
	}
	balance -= now / 250

	if trustedCount < p.UNLThresh {
		return false
	}

	switch {
	case n.OwnBit == gossip.Positive && balance < -p.SelfWeight:
		n.flipTo(gossip.Negative, changes, tally)
		return true
	case n.OwnBit == gossip.Negative && balance > p.SelfWeight:
		n.flipTo(gossip.Positive, changes, tally)
		return true
	default:
		return false
	}
}

// flipTo changes OwnBit, bumps this node's own freshness timestamp,
// maintains the global tally, and records the flip into changes so it is
// broadcast alongside whatever peer updates triggered it.
func (n *Node) flipTo(bit gossip.Bit, changes map[int]gossip.NodeState, tally *Tally) {
	if n.OwnBit == gossip.Positive {
		tally.Positive--
	} else if n.OwnBit == gossip.Negative {
		tally.Negative--
	}
	n.OwnBit = bit
	n.Knowledge[n.ID] = bit
	if bit == gossip.Positive {
		tally.Positive++
	} else {
		tally.Negative++
	}
	n.Timestamps[n.ID]++
	changes[n.ID] = gossip.NodeState{Subject: n.ID, Timestamp: n.Timestamps[n.ID], Bit: bit}
}
