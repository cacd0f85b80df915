package mesh

import (
	"sort"

	"github.com/crillab/satswarm/message"
)

// Fabric couples a Topology with a bandwidth-limited, single-cycle-latency
// delivery model (spec §4.D, §4.E). A message sent during cycle t is
// observable to its recipient's inbox at cycle t+1; per-node receive
// bandwidth is capped at B, the rest stays queued (spec §4.C).
//
// Fabric implements the double-buffered discipline of design note §9:
// Send appends to the "next" staging area; Tick moves staged arrivals into
// the live inboxes that Node.Step reads from.
type Fabric struct {
	topo       Topology
	bandwidth  int
	nodeInbox  [][]message.Message
	nextNode   [][]message.Message
	ctInbox    []message.Message
	nextCT     []message.Message
	busy       []bool
	nextBusy   []bool
}

// NewFabric builds a Fabric over topo with per-node receive bandwidth B.
func NewFabric(topo Topology, bandwidth int) *Fabric {
	n := topo.Size()
	return &Fabric{
		topo:      topo,
		bandwidth: bandwidth,
		nodeInbox: make([][]message.Message, n),
		nextNode:  make([][]message.Message, n),
		busy:      make([]bool, n),
		nextBusy:  make([]bool, n),
	}
}

// Topology returns the underlying topology.
func (f *Fabric) Topology() Topology { return f.topo }

// Bandwidth returns B, the per-node receive cap.
func (f *Fabric) Bandwidth() int { return f.bandwidth }

// Size returns the number of nodes on the fabric.
func (f *Fabric) Size() int { return f.topo.Size() }

// Send stages msg for delivery at the next cycle boundary.
func (f *Fabric) Send(msg message.Message) {
	if msg.To.Role == message.RoleClauseTable {
		f.nextCT = append(f.nextCT, msg)
		return
	}
	f.nextNode[msg.To.Node] = append(f.nextNode[msg.To.Node], msg)
}

// SetBusy stages node id's busy flag for the next cycle boundary (spec
// §4.C: busy-signal toggles observable to neighbors take effect at the
// next cycle boundary, same as any other emitted effect).
func (f *Fabric) SetBusy(id int, busy bool) {
	f.nextBusy[id] = busy
}

// IsBusy reports whether neighbor id was busy as of the start of the
// current cycle.
func (f *Fabric) IsBusy(id int) bool {
	return f.busy[id]
}

// Inbox returns node id's pending queue as of the start of the current
// cycle, oldest first (spec §5: FIFO per source/destination pair).
func (f *Fabric) Inbox(id int) []message.Message {
	return f.nodeInbox[id]
}

// ConsumeInbox drops the first n messages from node id's pending queue,
// called by the driver once it knows how many Node.Step actually consumed
// (never more than Bandwidth()).
func (f *Fabric) ConsumeInbox(id int, n int) {
	f.nodeInbox[id] = f.nodeInbox[id][n:]
}

// ClauseTableInbox returns the clause store's pending queue as of the
// start of the current cycle.
func (f *Fabric) ClauseTableInbox() []message.Message {
	return f.ctInbox
}

// ConsumeClauseTableInbox drops the first n messages from the clause
// store's pending queue.
func (f *Fabric) ConsumeClauseTableInbox(n int) {
	f.ctInbox = f.ctInbox[n:]
}

// Tick moves every staged arrival into the live inboxes and swaps the busy
// vector, implementing the next-cycle-boundary semantics of spec §4.D/§5.
// Arrivals staged in the same cycle are ordered by (source node id, kind)
// before being appended, per the lexicographic processing rule of §4.C.
func (f *Fabric) Tick() {
	for id := range f.nodeInbox {
		batch := f.nextNode[id]
		sortByLexicographicOrder(batch)
		f.nodeInbox[id] = append(f.nodeInbox[id], batch...)
		f.nextNode[id] = nil
	}
	sortByLexicographicOrder(f.nextCT)
	f.ctInbox = append(f.ctInbox, f.nextCT...)
	f.nextCT = nil

	copy(f.busy, f.nextBusy)
}

func sortByLexicographicOrder(batch []message.Message) {
	sort.SliceStable(batch, func(i, j int) bool {
		a, b := batch[i], batch[j]
		if a.From.Node != b.From.Node {
			return a.From.Node < b.From.Node
		}
		return a.Kind < b.Kind
	})
}
