// Package topology builds the immutable peer graph and per-node trusted
// sets delivered to the simulation at startup, and implements the directed
// Link that carries the per-edge coalescing/suppression state between a
// node and one of its peers.
package topology

import (
	"gossipsim/internal/gossip"
	"gossipsim/internal/schedule"
)

// Link is one directed edge from a node to a peer. It tracks the one-way
// latency fixed at construction and, if any, the single message currently
// queued for delivery on this edge.
type Link struct {
	To           int
	TotalLatency int

	LastSendTime int
	LastRecvTime int
	LastMessage  *gossip.Message
}

// NewLink creates a link to peer `to` with the given fixed one-way latency.
func NewLink(to, totalLatency int) *Link {
	return &Link{To: to, TotalLatency: totalLatency}
}

// Editable reports whether the link's last queued message can still be
// mutated in place rather than requiring a new message - the message is
// "not yet placed on the wire" when LastSendTime is strictly after now.
// This boundary is stricter than Suppressible's: a message whose send time
// equals `now` is already being placed on the wire and can no longer be
// merged into, but it can still be pruned by Sub (see Suppressible).
func (l *Link) Editable(now int) bool {
	return l.LastMessage != nil && l.LastSendTime > now
}

// Suppressible reports whether this link currently holds an outbound
// message that can still be pruned via Sub, including one sent exactly at
// `now` - the wider of the two boundaries, used when a node reacts to an
// incoming message by checking whether its own queued reply is stale.
func (l *Link) Suppressible(now int) bool {
	return l.LastMessage != nil && l.LastSendTime >= now
}

// queued records that msg is now the link's single editable in-flight
// message, sent at sendTime.
func (l *Link) queued(msg *gossip.Message, sendTime int) {
	l.LastSendTime = sendTime
	l.LastRecvTime = sendTime + l.TotalLatency
	l.LastMessage = msg
}

// SendParams bundles the simulation constants that govern the edit-or-send
// decision, so callers don't thread four separate integers through.
type SendParams struct {
	BaseDelay     int
	PacketsOnWire int
}

// QueueOrMerge either coalesces changes into the link's current in-flight
// message or sends a new one. If the link already has an editable message
// queued, changes are merged into it in place and nothing new touches the
// scheduler. Otherwise a new message is built and enqueued: its send_time is
// urgent (no coalescing delay) when flipped is true, else delayed by
// BaseDelay and, if a previous message is still "on the wire", delayed
// further to respect PacketsOnWire concurrent packets per direction.
func (l *Link) QueueOrMerge(sch *schedule.Scheduler, from int, changes map[int]gossip.NodeState, now int, flipped bool, p SendParams) {
	if l.Editable(now) {
		l.LastMessage.Add(changes)
		return
	}

	sendTime := now
	if !flipped {
		sendTime += p.BaseDelay
		if l.LastRecvTime > sendTime {
			sendTime += l.TotalLatency / p.PacketsOnWire
		}
	}

	msg := gossip.New(from, l.To)
	msg.Add(changes)
	recvTime := sendTime + l.TotalLatency
	sch.Enqueue(msg, recvTime)
	l.queued(msg, sendTime)
}
