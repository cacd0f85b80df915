package node

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/crillab/satswarm/cnf"
	"github.com/crillab/satswarm/message"
)

// Report is the verdict a Node hands to the driver the cycle it leaves
// Reporting. Only the root's Report matters to the simulation as a whole
// (spec §4.C: "the root emits globally"); every other node's report is
// just the Message already sitting in that cycle's outbox, addressed to
// its parent.
type Report struct {
	Status  cnf.Status
	Witness []bool
}

// Node is one mesh-resident DPLL engine (spec §4.C). Its Step is a pure
// function of its own state and the inbox handed to it: a Node never reads
// the fabric or the clause store directly, so the driver is free to apply
// inboxes and outboxes as it likes, so long as it does so consistently
// every cycle (design note §9).
type Node struct {
	id          int
	isRoot      bool
	nbVars      int
	nbClauses   int
	clauseWidth int
	clauseLen   []int // real literal count per clause; slots beyond it are ABSENT

	state   State
	parent  message.Addr
	buffer  message.AssignmentBuffer
	stack   []stackEntry
	decided []bool

	nextQueryID int
	curQueryID  int
	curVar      int
	curNext     int // next clause index expected from the live stream

	// touched records every (clauseIndex, slot) pair the live stream has
	// advanced out of Symbolic for curVar, so that decide() can derive a
	// FORK buffer for curVar's opposite polarity by flipping exactly those
	// slots instead of re-querying the store.
	touched [][2]int

	retryAfterReset bool    // backtracking: flip polarity once the reset completes
	resetInFlight   bool    // backtracking: a RESET_QUERY stream is still being consumed
	pendingReport   *Report // set on entering Reporting, emitted and cleared by report()

	// Verdicts reported by forked children, keyed by child node id, so that
	// Backtracking can consult them without waiting on message order.
	childVerdict map[int]cnf.Status
	childWitness map[int][]bool
}

// New returns an idle node over a formula with the given per-clause literal
// counts (clauseLen[i] == formula.Clauses[i].Len()). Call Activate on
// exactly one node (the root) before the first cycle to seed the search;
// every other node starts idle and wakes on its first FORK.
func New(id, nbVars, clauseWidth int, clauseLen []int, isRoot bool) *Node {
	return &Node{
		id:           id,
		isRoot:       isRoot,
		nbVars:       nbVars,
		nbClauses:    len(clauseLen),
		clauseWidth:  clauseWidth,
		clauseLen:    clauseLen,
		decided:      make([]bool, nbVars),
		childVerdict: make(map[int]cnf.Status),
		childWitness: make(map[int][]bool),
	}
}

func (n *Node) ID() int      { return n.id }
func (n *Node) State() State { return n.state }

// Activate kicks the root off an empty buffer at simulation start (spec
// §4.C: Idle to Substituting at simulator start on the root node only).
func (n *Node) Activate() []message.Message {
	if n.state != Idle {
		panic("node: Activate on a non-idle node")
	}
	n.buffer = blankBuffer(n.nbClauses, n.clauseWidth)
	n.parent = message.Addr{}
	v, ok := n.pickUnassigned()
	if !ok {
		return n.finish(cnf.Sat, n.buildWitness())
	}
	return n.enterSubstituting(v, false)
}

// Step consumes up to bandwidth inbox messages (already delivered by the
// fabric in lexicographic order) and returns the messages to send this
// cycle, how many inbox messages it actually consumed, whether the node is
// busy as of this cycle, and a non-nil Report exactly when this is the
// root node leaving Reporting.
func (n *Node) Step(inbox []message.Message, bandwidth int, neighbors []int, neighborBusy func(int) bool) (outbox []message.Message, consumed int, busy bool, report *Report) {
	// Deciding and Reporting need no inbox message to make progress; every
	// other state either consumes exactly one relevant message this cycle
	// or silently drains whatever is stale (a verdict from a forked child,
	// or a leftover mask from a stream this node has since abandoned) so
	// that stale traffic never blocks the FIFO behind it.
	if n.state == Deciding {
		out, rep := n.decide(neighbors, neighborBusy)
		return out, 0, true, rep
	}
	if n.state == Reporting {
		// Busy through the cycle it emits its upward report, inclusive
		// (spec §4.C: "from the cycle it receives FORK through the cycle it
		// emits its upward report").
		out, rep := n.report()
		return out, 0, true, rep
	}

	budget := bandwidth
	i := 0
	for i < len(inbox) && budget > 0 {
		msg := inbox[i]
		i++
		budget--

		if msg.Kind == message.UNSAT_UP || msg.Kind == message.SAT_UP {
			n.recordChildVerdict(msg)
			continue
		}

		switch n.state {
		case Idle:
			if msg.Kind != message.FORK {
				panic(fmt.Sprintf("node#%d: invariant violation: %s received while idle", n.id, msg.Kind))
			}
			n.parent = msg.From
			return n.wake(msg.Buffer, msg.Depth), i, true, nil

		case Substituting:
			if msg.Kind == message.SUBST_MASK || msg.Kind == message.VAR_NOT_FOUND {
				if msg.QueryID == n.curQueryID {
					out, rep := n.handleSubstReply(msg)
					return out, i, true, rep
				}
			}
			// stale reply from an abandoned stream: discard, keep draining

		case Backtracking:
			if msg.Kind == message.RESET_MASK || msg.Kind == message.VAR_NOT_FOUND {
				if msg.QueryID == n.curQueryID {
					out, rep := n.handleResetReply(msg)
					return out, i, true, rep
				}
			}

		default:
			panic("node: invalid state")
		}
	}

	if n.state == Backtracking && !n.resetInFlight {
		// No reset stream to wait on; still, a stack top may already be
		// resolvable (a pending child verdict recorded above, or nothing
		// left to wait on) without needing a fresh message.
		out, rep := n.advanceBacktrack()
		return out, i, true, rep
	}
	return nil, i, n.state != Idle, nil
}

func (n *Node) recordChildVerdict(msg message.Message) {
	child := msg.From.Node
	if msg.Kind == message.SAT_UP {
		n.childVerdict[child] = cnf.Sat
		n.childWitness[child] = msg.Witness
		return
	}
	n.childVerdict[child] = cnf.Unsat
}

// wake is the Idle -> Substituting transition on FORK receipt: adopt the
// inherited buffer, mark every variable the parent already decided along
// the path down to this node as decided here too (so pickUnassigned skips
// them rather than re-deciding variable 0), then pick the lowest remaining
// unassigned variable and open a substitution query for it at polarity
// false (spec §4.C).
func (n *Node) wake(inherited message.AssignmentBuffer, depth int) []message.Message {
	n.buffer = message.CloneBuffer(inherited)
	for v := 0; v < depth && v < n.nbVars; v++ {
		n.decided[v] = true
	}
	v, ok := n.pickUnassigned()
	if !ok {
		// Every variable already decided by the parent's own choices: the
		// inherited buffer must already be fully satisfied.
		return n.finish(cnf.Sat, n.buildWitness())
	}
	return n.enterSubstituting(v, false)
}

func (n *Node) enterSubstituting(v int, polarity bool) []message.Message {
	n.state = Substituting
	n.decided[v] = true
	n.stack = append(n.stack, stackEntry{Var: v, Polarity: polarity, Kind: speculative})
	n.curVar = v
	n.curNext = 0
	n.touched = nil
	n.nextQueryID++
	n.curQueryID = n.nextQueryID
	return []message.Message{n.substQuery(v, polarity)}
}

func (n *Node) substQuery(v int, polarity bool) message.Message {
	return message.Message{
		From:     message.NodeAddr(n.id),
		To:       message.ClauseTableAddr(),
		Kind:     message.SUBST_QUERY,
		Var:      v,
		Polarity: polarity,
		QueryID:  n.curQueryID,
	}
}

func (n *Node) resetQuery(v int) message.Message {
	return message.Message{
		From:    message.NodeAddr(n.id),
		To:      message.ClauseTableAddr(),
		Kind:    message.RESET_QUERY,
		Var:     v,
		Reset:   true,
		QueryID: n.curQueryID,
	}
}

// handleSubstReply applies one SUBST_MASK/VAR_NOT_FOUND to the current
// clause slot. On contradiction it drops the stream and backtracks; on
// stream completion (or VAR_NOT_FOUND) it moves to Deciding (spec §4.C).
func (n *Node) handleSubstReply(msg message.Message) ([]message.Message, *Report) {
	if msg.Kind == message.VAR_NOT_FOUND {
		n.state = Deciding
		return nil, nil
	}
	idx := msg.ClauseIndex
	applyMask(n.buffer[idx], msg.Update)
	for slot, u := range msg.Update {
		if u == message.Matches || u == message.Opposes {
			n.touched = append(n.touched, [2]int{idx, slot})
		}
	}
	if clauseContradicted(n.buffer[idx], n.clauseLen[idx]) {
		return n.beginBacktrack()
	}
	n.curNext++
	if n.curNext >= n.nbClauses {
		n.state = Deciding
	}
	return nil, nil
}

// decide is the Deciding state: report SAT if every clause is already
// satisfied, otherwise try to offload the opposite polarity of the
// variable just substituted to an idle neighbor, then descend into a new
// variable (spec §4.C).
func (n *Node) decide(neighbors []int, neighborBusy func(int) bool) ([]message.Message, *Report) {
	if n.allSatisfied() {
		return n.finish(cnf.Sat, n.buildWitness()), nil
	}

	var outbox []message.Message
	top := &n.stack[len(n.stack)-1]
	if nb, ok := lo.Find(neighbors, func(nb int) bool { return !neighborBusy(nb) }); ok {
		outbox = append(outbox, message.Message{
			From:   message.NodeAddr(n.id),
			To:     message.NodeAddr(nb),
			Kind:   message.FORK,
			Buffer: flipTouched(n.buffer, n.touched),
			// Variables are decided in increasing index order, so this
			// counts every variable fixed along the path, inherited ones too.
			Depth: top.Var + 1,
		})
		top.Kind = forkedAway
		top.Child = nb
	}

	v, ok := n.pickUnassigned()
	if !ok {
		// Every variable decided yet some clause unsatisfied: the last
		// variable assigned would already have contradicted that clause
		// in handleSubstReply, so this is unreachable in correct operation.
		panic(fmt.Sprintf("node#%d: invariant violation: no unassigned variable but formula not satisfied", n.id))
	}
	outbox = append(outbox, n.enterSubstituting(v, false)...)
	return outbox, nil
}

// beginBacktrack enters Backtracking on the entry that just contradicted,
// which is always the current stack top and always speculative (spec
// §4.C): a node only substitutes variables it chose itself.
func (n *Node) beginBacktrack() ([]message.Message, *Report) {
	n.state = Backtracking
	return n.advanceBacktrack()
}

// advanceBacktrack drives the Backtracking loop of spec §4.C: pop entries
// (each undone via its own RESET_MASK stream) until either a speculative
// entry with an untried polarity is found (restart Substituting there), a
// forked-away entry with a pending child SAT is found (report SAT), or the
// stack empties (report UNSAT). A forked-away entry with no verdict yet
// makes the node idle this cycle: it is genuinely blocked.
func (n *Node) advanceBacktrack() ([]message.Message, *Report) {
	for {
		if len(n.stack) == 0 {
			return n.finish(cnf.Unsat, nil), nil
		}
		top := n.stack[len(n.stack)-1]

		if top.Kind == forkedAway {
			status, ok := n.childVerdict[top.Child]
			if !ok {
				return nil, nil // blocked: awaiting the child's answer
			}
			if status == cnf.Sat {
				return n.finish(cnf.Sat, n.childWitness[top.Child]), nil
			}
			n.retryAfterReset = false
			return n.openResetFor(top.Var), nil
		}

		if !top.Polarity {
			n.retryAfterReset = true
			return n.openResetFor(top.Var), nil
		}
		n.retryAfterReset = false
		return n.openResetFor(top.Var), nil
	}
}

func (n *Node) openResetFor(v int) []message.Message {
	n.curVar = v
	n.curNext = 0
	n.resetInFlight = true
	n.nextQueryID++
	n.curQueryID = n.nextQueryID
	return []message.Message{n.resetQuery(v)}
}

// handleResetReply applies one RESET_MASK to the current clause slot. On
// stream completion (or VAR_NOT_FOUND) it pops the variable off the stack
// and either restarts Substituting at the flipped polarity or continues
// the backtrack loop (spec §4.C).
func (n *Node) handleResetReply(msg message.Message) ([]message.Message, *Report) {
	if msg.Kind != message.VAR_NOT_FOUND {
		idx := msg.ClauseIndex
		applyMask(n.buffer[idx], msg.Update)
		n.curNext++
		if n.curNext < n.nbClauses {
			return nil, nil
		}
	}

	n.resetInFlight = false
	v := n.curVar
	popped := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	n.decided[v] = false
	if popped.Kind == forkedAway {
		delete(n.childVerdict, popped.Child)
		delete(n.childWitness, popped.Child)
	}

	if n.retryAfterReset {
		return n.enterSubstituting(v, true), nil
	}
	return n.advanceBacktrack()
}

// report emits this node's verdict to its parent (or, for the root,
// signals global termination) and returns to Idle (spec §4.C).
func (n *Node) report() ([]message.Message, *Report) {
	rep := n.pendingReport
	n.pendingReport = nil
	n.state = Idle
	n.stack = nil
	for i := range n.decided {
		n.decided[i] = false
	}
	n.childVerdict = make(map[int]cnf.Status)
	n.childWitness = make(map[int][]bool)

	if n.isRoot {
		return nil, rep
	}

	var msg message.Message
	if rep.Status == cnf.Sat {
		msg = message.Message{From: message.NodeAddr(n.id), To: n.parent, Kind: message.SAT_UP, Witness: rep.Witness}
	} else {
		msg = message.Message{From: message.NodeAddr(n.id), To: n.parent, Kind: message.UNSAT_UP}
	}
	return []message.Message{msg}, nil
}

func (n *Node) finish(status cnf.Status, witness []bool) []message.Message {
	n.state = Reporting
	n.pendingReport = &Report{Status: status, Witness: witness}
	return nil
}

func (n *Node) pickUnassigned() (int, bool) {
	for v := 0; v < n.nbVars; v++ {
		if !n.decided[v] {
			return v, true
		}
	}
	return 0, false
}

func (n *Node) allSatisfied() bool {
	for idx, clause := range n.buffer {
		if !clauseSatisfied(clause, n.clauseLen[idx]) {
			return false
		}
	}
	return true
}

func (n *Node) buildWitness() []bool {
	w := make([]bool, n.nbVars)
	for _, e := range n.stack {
		w[e.Var] = e.Polarity
	}
	return w
}

func blankBuffer(nbClauses, width int) message.AssignmentBuffer {
	buf := make(message.AssignmentBuffer, nbClauses)
	for i := range buf {
		buf[i] = make([]message.TermState, width)
	}
	return buf
}

// flipTouched clones buf and swaps Satisfying<->Falsified at exactly the
// slots curVar's own substitution stream touched, producing the buffer
// curVar's opposite polarity would have yielded without re-querying the
// store: flipping an assignment flips Matches<->Opposes for every literal
// of that variable, and every other slot is untouched either way.
func flipTouched(buf message.AssignmentBuffer, touched [][2]int) message.AssignmentBuffer {
	out := message.CloneBuffer(buf)
	for _, t := range touched {
		idx, slot := t[0], t[1]
		switch out[idx][slot] {
		case message.Satisfying:
			out[idx][slot] = message.Falsified
		case message.Falsified:
			out[idx][slot] = message.Satisfying
		}
	}
	return out
}

func applyMask(clause []message.TermState, mask message.Mask) {
	for j, u := range mask {
		switch u {
		case message.Matches:
			clause[j] = message.Satisfying
		case message.Opposes:
			clause[j] = message.Falsified
		case message.Reset:
			clause[j] = message.Symbolic
		}
	}
}

func clauseSatisfied(clause []message.TermState, length int) bool {
	for _, t := range clause[:length] {
		if t == message.Satisfying {
			return true
		}
	}
	return false
}

func clauseContradicted(clause []message.TermState, length int) bool {
	for _, t := range clause[:length] {
		if t != message.Falsified {
			return false
		}
	}
	return true
}
