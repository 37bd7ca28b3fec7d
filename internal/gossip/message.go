// Package gossip implements the wire payload exchanged between nodes: a
// per-subject (timestamp, bit) map that can be merged and pruned in place
// while it still sits in the scheduler's event queue.
package gossip

// Bit is a participant's position. Zero means "unknown" and is only ever
// seen inside a NodeState that has never been overwritten.
type Bit int8

const (
	Negative Bit = -1
	Unknown  Bit = 0
	Positive Bit = 1
)

// NodeState is what a message carries about one subject node: the most
// recent (timestamp, bit) pair the sender has observed for it.
type NodeState struct {
	Subject   int
	Timestamp int
	Bit       Bit
}

// Message is a payload from From to To. Data never contains an entry for
// To itself - a message never tells its recipient about itself. A Message
// is mutable until it is dispatched by the scheduler: Add and Sub are the
// only ways its Data should change while queued.
type Message struct {
	From int
	To   int
	Data map[int]NodeState
}

// New creates an empty message from one node to another.
func New(from, to int) *Message {
	return &Message{From: from, To: to, Data: map[int]NodeState{}}
}

// Empty reports whether the message carries no subject data, in which case
// the scheduler must not deliver it to the update rule (see Sub).
func (m *Message) Empty() bool {
	return len(m.Data) == 0
}

// Add merges update into m.Data. For every subject k != m.To: if m.Data
// already has a strictly older entry for k, it is overwritten; if m.Data
// has no entry at all, the update is inserted; otherwise (an equal or
// newer entry already present) nothing happens.
func (m *Message) Add(update map[int]NodeState) {
	for k, ns := range update {
		if k == m.To {
			continue
		}
		existing, ok := m.Data[k]
		if !ok {
			m.Data[k] = ns
			continue
		}
		if ns.Timestamp > existing.Timestamp {
			m.Data[k] = ns
		}
	}
}

// Sub prunes entries from m.Data that the recipient has already told us it
// knows at least as fresh a value for. For every subject k != m.To in
// received: if m.Data has k and received's timestamp is >= the timestamp we
// were about to send, that entry is erased.
func (m *Message) Sub(received map[int]NodeState) {
	for k, ns := range received {
		if k == m.To {
			continue
		}
		existing, ok := m.Data[k]
		if ok && ns.Timestamp >= existing.Timestamp {
			delete(m.Data, k)
		}
	}
}
