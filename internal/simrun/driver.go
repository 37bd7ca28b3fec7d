// Package simrun wires topology, gossip and consensus together into the
// simulation driver: it builds nodes and links, seeds the initial
// broadcasts, runs the scheduler to termination, and reports.
package simrun

import (
	"fmt"
	"io"
	"math/rand"

	"go.uber.org/zap"

	"gossipsim/internal/config"
	"gossipsim/internal/consensus"
	"gossipsim/internal/gossip"
	"gossipsim/internal/runid"
	"gossipsim/internal/schedule"
	"gossipsim/internal/topology"
)

// Report is what the driver hands back at termination: the three summary
// figures, plus whether the run ended by radio silence.
type Report struct {
	ConvergenceTimeMs int
	ResidualMessages  int
	AverageSent       int
	RadioSilence      bool
}

// Driver owns the whole single run: the node population, the scheduler,
// and the global tally. It is not safe for concurrent use - the whole
// simulation runs on a single goroutine.
type Driver struct {
	cfg    config.Config
	params consensus.Params

	sch   *schedule.Scheduler
	nodes map[int]*consensus.Node
	tally consensus.Tally
	debug *debugState

	out      io.Writer
	log      *zap.Logger
	quiet    bool
	lastTick int
}

// New builds the full topology and seeds the initial broadcasts. cfg.Seed
// is expanded into independent per-phase sub-seeds via runid.SubSeed so
// that the topology builder's consumption order (nodes and trusted sets,
// then links) is preserved without one phase's draw count perturbing
// another's stream.
func New(cfg config.Config, log *zap.Logger, out io.Writer, quiet bool) *Driver {
	topoRNG := rand.New(rand.NewSource(runid.SubSeed(cfg.Seed, runid.PhaseTopology)))
	linkRNG := rand.New(rand.NewSource(runid.SubSeed(cfg.Seed, runid.PhaseLinks)))

	specs := topology.BuildNodeSpecs(cfg.Nodes, cfg.E2CLatencyMin, cfg.E2CLatencyMax, cfg.UNLMin, cfg.UNLMax, topoRNG)
	edges := topology.BuildEdges(specs, cfg.OutboundLinks, cfg.C2CLatencyMin, cfg.C2CLatencyMax, linkRNG)

	linksByNode := map[int][]*topology.Link{}
	for _, e := range edges {
		ab := topology.NewLink(e.B, e.TotalLatency)
		ba := topology.NewLink(e.A, e.TotalLatency)
		linksByNode[e.A] = append(linksByNode[e.A], ab)
		linksByNode[e.B] = append(linksByNode[e.B], ba)
	}

	d := &Driver{
		cfg: cfg,
		params: consensus.Params{
			NumMaliciousNodes: cfg.MaliciousNodes,
			UNLThresh:         cfg.UNLThresh,
			SelfWeight:        cfg.SelfWeight,
			Send:              topology.SendParams{BaseDelay: cfg.BaseDelay, PacketsOnWire: cfg.PacketsOnWire},
		},
		sch:   schedule.New(),
		nodes: map[int]*consensus.Node{},
		debug: newDebugState(),
		out:   out,
		log:   log,
		quiet: quiet,
	}

	for _, spec := range specs {
		bit := gossip.Bit(spec.InitialBit)
		n := consensus.New(spec.ID, bit, spec.TrustedSet, linksByNode[spec.ID])
		d.nodes[spec.ID] = n
		if bit == gossip.Positive {
			d.tally.Positive++
		} else {
			d.tally.Negative++
		}
	}

	// Seed every link in node-id order, not map order: two mirrored links
	// for the same edge share TotalLatency, are both sent at t=0 and so land
	// in the same bucket (t=TotalLatency), so within-bucket delivery order
	// here must be a
	// deterministic function of cfg.Seed, not of Go's randomized map
	// iteration.
	for _, spec := range specs {
		n := d.nodes[spec.ID]
		for _, l := range n.Links {
			l.QueueOrMerge(d.sch, n.ID, n.InitialBroadcast(), 0, true, d.params.Send)
		}
	}

	return d
}

// shouldStop reports whether either side of the tally has crossed the
// configured consensus threshold.
func (d *Driver) shouldStop() bool {
	threshold := d.cfg.Nodes * d.cfg.ConsensusPercent / 100
	return d.tally.Positive > threshold || d.tally.Negative > threshold
}

// Deliver implements schedule.Deliverer: hand msg to its destination node's
// Receive, then cheaply re-check that the global tally still accounts for
// every node exactly once.
func (d *Driver) Deliver(msg *gossip.Message, now int) {
	node, ok := d.nodes[msg.To]
	if !ok {
		panic(&InvariantError{Invariant: "message destination must be a known node", Detail: fmt.Sprintf("to=%d", msg.To)})
	}
	node.Receive(msg, now, d.sch, d.params, &d.tally)
	d.debug.checkInvariants(d, msg, now)

	if d.tally.Positive+d.tally.Negative != d.cfg.Nodes {
		panic(&InvariantError{
			Invariant: "nodes_positive + nodes_negative == N",
			Detail:    fmt.Sprintf("got %d + %d, want %d", d.tally.Positive, d.tally.Negative, d.cfg.Nodes),
		})
	}
}

// onSuppressed accounts for a message pruned to nothing before dispatch: it
// is never delivered, and the sender's Sent counter is decremented so
// suppressed messages cost nothing in the reported average.
func (d *Driver) onSuppressed(msg *gossip.Message) {
	if sender, ok := d.nodes[msg.From]; ok {
		sender.Sent--
	}
}

// onTick prints the periodic progress line whenever t/100 strictly exceeds
// the last printed tick's t/100.
func (d *Driver) onTick(t int) {
	if !d.quiet && t/100 > d.lastTick/100 {
		fmt.Fprintf(d.out, "Time: %d ms  %d/%d\n", t, d.tally.Positive, d.tally.Negative)
	}
	d.lastTick = t
}

// Run drives the scheduler to termination and, when consensus is reached,
// prints the two report lines; on radio silence it logs a warning, prints
// neither line and returns ErrRadioSilence. It recovers an *InvariantError panic raised from Deliver
// and returns it as an error rather than letting it crash the process
// without a diagnostic.
func (d *Driver) Run() (report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()

	radioSilence := d.sch.Run(d, d.shouldStop, d.onSuppressed, d.onTick)

	totalSent := 0
	for _, n := range d.nodes {
		totalSent += n.Sent
	}

	report = Report{
		ConvergenceTimeMs: d.sch.Now(),
		ResidualMessages:  d.sch.QueueSize(),
		AverageSent:       totalSent / d.cfg.Nodes,
		RadioSilence:      radioSilence,
	}

	if radioSilence {
		d.log.Warn("radio silence: event queue emptied before consensus", zap.Int("time_ms", report.ConvergenceTimeMs))
		return report, ErrRadioSilence
	}

	fmt.Fprintf(d.out, "Consensus reached in %d ms with %d messages on the wire\n", report.ConvergenceTimeMs, report.ResidualMessages)
	fmt.Fprintf(d.out, "The average node sent %d messages\n", report.AverageSent)
	return report, nil
}
