package sim

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/crillab/satswarm/clausetable"
	"github.com/crillab/satswarm/cnf"
	"github.com/crillab/satswarm/mesh"
	"github.com/crillab/satswarm/node"
)

// Result summarizes one completed (or cycle-capped) run (spec §4.E, §7).
type Result struct {
	Verdict         cnf.Status
	SimulatedCycles int
	BusyCycles      int // sum, over all nodes and cycles, of that node's busy signal
	IdleCycles      int // sum, over all nodes and cycles, of that node's idle signal
	Witness         []bool
}

// Driver owns one mesh's worth of nodes, the interconnect between them, and
// the shared clause store, and runs them in lock-step.
type Driver struct {
	nodes    []*node.Node
	fabric   *mesh.Fabric
	store    *clausetable.Store
	cycleCap int
	log      *logrus.Entry
}

// New builds a Driver for formula f over topo, with per-node receive
// bandwidth and a hard cap on simulated cycles (spec §4.E, §6).
func New(f *cnf.Formula, topo mesh.Topology, bandwidth, cycleCap int, log *logrus.Entry) *Driver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	lens := f.ClauseLens()
	nodes := make([]*node.Node, topo.Size())
	for i := range nodes {
		nodes[i] = node.New(i, f.NbVars, f.ClauseWidth, lens, i == 0)
	}
	return &Driver{
		nodes:    nodes,
		fabric:   mesh.NewFabric(topo, bandwidth),
		store:    clausetable.NewStore(f),
		cycleCap: cycleCap,
		log:      log,
	}
}

// Run drives the mesh until the root reports a verdict or the cycle cap is
// hit, whichever comes first (spec §4.E). It never starts a second run on
// the same Driver.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	for _, m := range d.nodes[0].Activate() {
		d.fabric.Send(m)
	}
	d.fabric.Tick()

	verdict := cnf.Unknown
	var witness []bool
	busyCycles, idleCycles, cycle := 0, 0, 0

	for cycle < d.cycleCap {
		if err := ctx.Err(); err != nil {
			return Result{Verdict: cnf.Unknown, SimulatedCycles: cycle}, err
		}

		d.stepClauseTable()
		busy, idle, done := d.stepNodes(&verdict, &witness)
		busyCycles += busy
		idleCycles += idle
		d.fabric.Tick()
		cycle++
		if done {
			break
		}
	}

	res := Result{
		Verdict:         verdict,
		SimulatedCycles: cycle,
		BusyCycles:      busyCycles,
		IdleCycles:      idleCycles,
		Witness:         witness,
	}
	d.log.WithFields(logrus.Fields{
		"verdict": res.Verdict,
		"cycles":  res.SimulatedCycles,
		"busy":    res.BusyCycles,
		"idle":    res.IdleCycles,
	}).Debug("run complete")
	return res, nil
}

// stepClauseTable delivers this cycle's query-open messages to the store
// and advances its single serial port by one mask (spec §4.A). Query opens
// are not bandwidth-limited: only a node's own receive side is.
func (d *Driver) stepClauseTable() {
	inbox := d.fabric.ClauseTableInbox()
	for _, msg := range inbox {
		d.store.OpenFromMessage(msg)
	}
	d.fabric.ConsumeClauseTableInbox(len(inbox))

	if reply := d.store.Step(); reply != nil {
		d.fabric.Send(*reply)
	}
}

// stepNodes steps every node once against its current inbox and routes
// whatever it produces back through the fabric. It returns this cycle's
// busy/idle tallies — one unit per node, per spec §4.E's "each node
// contributes to busy_cycles or idle_cycles by its busy signal" — and
// whether the root has now reported, with *verdict/*witness set to its
// conclusion in that case.
func (d *Driver) stepNodes(verdict *cnf.Status, witness *[]bool) (busy, idle int, done bool) {
	for _, n := range d.nodes {
		id := n.ID()
		inbox := d.fabric.Inbox(id)
		neighbors := d.fabric.Topology().Neighbors(id)
		outbox, consumed, nodeBusy, report := n.Step(inbox, d.fabric.Bandwidth(), neighbors, d.fabric.IsBusy)

		d.fabric.ConsumeInbox(id, consumed)
		for _, m := range outbox {
			d.fabric.Send(m)
		}
		d.fabric.SetBusy(id, nodeBusy)
		if nodeBusy {
			busy++
		} else {
			idle++
		}

		if report != nil {
			*verdict = report.Status
			*witness = report.Witness
			done = true
		}
	}
	return busy, idle, done
}
