package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/satswarm/clausetable"
	"github.com/crillab/satswarm/cnf"
	"github.com/crillab/satswarm/message"
)

// driveSingleNode runs one root node against a clause store with no mesh
// at all (an empty neighbor list, so the node never forks): a direct,
// sequential exercise of the FSM's stream-consuming states.
func driveSingleNode(t *testing.T, f *cnf.Formula, cycleCap int) *Report {
	t.Helper()
	store := clausetable.NewStore(f)
	n := New(0, f.NbVars, f.ClauseWidth, f.ClauseLens(), true)

	pending := n.Activate()
	for cycle := 0; cycle < cycleCap; cycle++ {
		for _, m := range pending {
			store.OpenFromMessage(m)
		}
		pending = nil

		reply := store.Step()
		var inbox []message.Message
		if reply != nil {
			inbox = []message.Message{*reply}
		}

		out, _, _, report := n.Step(inbox, 1, nil, func(int) bool { return false })
		if report != nil {
			return report
		}
		pending = out
	}
	t.Fatalf("cycle cap exceeded without a verdict")
	return nil
}

func TestNodeSingleVarSat(t *testing.T) {
	f, err := cnf.ParseSlice(1, [][]int{{1}})
	require.NoError(t, err)
	rep := driveSingleNode(t, f, 64)
	require.Equal(t, cnf.Sat, rep.Status)
	require.True(t, rep.Witness[0])
}

func TestNodeTwoClauseUnsat(t *testing.T) {
	f, err := cnf.ParseSlice(1, [][]int{{1}, {-1}})
	require.NoError(t, err)
	rep := driveSingleNode(t, f, 64)
	require.Equal(t, cnf.Unsat, rep.Status)
}

func TestNodeSatAfterOneBacktrack(t *testing.T) {
	// (x1) & (-x1 v x2): x1=false fails the first clause immediately, so
	// the node must flip x1 to true before x2 can be decided.
	f, err := cnf.ParseSlice(2, [][]int{{1}, {-1, 2}})
	require.NoError(t, err)
	rep := driveSingleNode(t, f, 64)
	require.Equal(t, cnf.Sat, rep.Status)
	require.True(t, rep.Witness[0])
}

func TestNodeAtMostOneOfTwoSat(t *testing.T) {
	// x1 v x2, -x1 v -x2: satisfiable by exactly one of the two being true.
	f, err := cnf.ParseSlice(2, [][]int{{1, 2}, {-1, -2}})
	require.NoError(t, err)
	rep := driveSingleNode(t, f, 128)
	require.Equal(t, cnf.Sat, rep.Status)
}

func TestNodeDecideForksOppositePolarityBuffer(t *testing.T) {
	// x1 v x2, x1 v -x2: substituting x1=false leaves both clauses with
	// their second literal still open, so decide() forks x1's opposite
	// polarity (true) to the idle neighbor. Since x1=true alone satisfies
	// both clauses outright, every slot that substitution touched must
	// come back Satisfying in the forked buffer, not still Falsified.
	f, err := cnf.ParseSlice(2, [][]int{{1, 2}, {1, -2}})
	require.NoError(t, err)
	store := clausetable.NewStore(f)
	n := New(0, f.NbVars, f.ClauseWidth, f.ClauseLens(), true)

	pending := n.Activate()
	var fork *message.Message
	for cycle := 0; cycle < 16 && fork == nil; cycle++ {
		for _, m := range pending {
			store.OpenFromMessage(m)
		}
		pending = nil

		var inbox []message.Message
		if reply := store.Step(); reply != nil {
			inbox = []message.Message{*reply}
		}

		out, _, _, report := n.Step(inbox, 1, []int{1}, func(int) bool { return false })
		require.Nil(t, report)
		for i := range out {
			if out[i].Kind == message.FORK {
				fork = &out[i]
			}
		}
		pending = out
	}
	require.NotNil(t, fork, "expected node 0 to fork x1's opposite polarity to neighbor 1")
	require.Equal(t, 1, fork.Depth)
	require.Equal(t, message.Satisfying, fork.Buffer[0][0])
	require.Equal(t, message.Satisfying, fork.Buffer[1][0])
}

// driveTwoNodes runs a root and one neighbor directly against a shared
// clause store, with no mesh/fabric in between: FORK, SAT_UP and UNSAT_UP
// are routed to the other node's inbox in the cycle after they are sent, and
// each node's busy flag (as seen by the other) lags by one cycle, the same
// double-buffering mesh.Fabric applies.
func driveTwoNodes(t *testing.T, f *cnf.Formula, cycleCap int) *Report {
	t.Helper()
	store := clausetable.NewStore(f)
	root := New(0, f.NbVars, f.ClauseWidth, f.ClauseLens(), true)
	child := New(1, f.NbVars, f.ClauseWidth, f.ClauseLens(), false)

	route := func(msgs []message.Message) (toRoot, toChild []message.Message) {
		for _, m := range msgs {
			switch {
			case m.Kind == message.SUBST_QUERY || m.Kind == message.RESET_QUERY:
				store.OpenFromMessage(m)
			case m.To.Node == 0:
				toRoot = append(toRoot, m)
			case m.To.Node == 1:
				toChild = append(toChild, m)
			}
		}
		return
	}

	rootPending := root.Activate()
	var childPending []message.Message
	rootBusy, childBusy := false, false

	for cycle := 0; cycle < cycleCap; cycle++ {
		r1, c1 := route(rootPending)
		r2, c2 := route(childPending)
		rootInbox := append(r1, r2...)
		childInbox := append(c1, c2...)

		if reply := store.Step(); reply != nil {
			if reply.To.Node == 0 {
				rootInbox = append(rootInbox, *reply)
			} else {
				childInbox = append(childInbox, *reply)
			}
		}

		rootOut, _, newRootBusy, rootReport := root.Step(rootInbox, 4, []int{1}, func(int) bool { return childBusy })
		childOut, _, newChildBusy, _ := child.Step(childInbox, 4, []int{0}, func(int) bool { return rootBusy })
		rootBusy, childBusy = newRootBusy, newChildBusy
		if rootReport != nil {
			return rootReport
		}
		rootPending, childPending = rootOut, childOut
	}
	t.Fatalf("cycle cap exceeded without a verdict")
	return nil
}

func TestNodeForkedAwayBacktrackConsultsChildVerdict(t *testing.T) {
	// x1 v x2, x1 v -x2: under x1=false the root's own branch is
	// unsatisfiable for either value of x2 (x2=false contradicts the
	// first clause, x2=true contradicts the second), forcing the root to
	// backtrack past its own speculative entries down to the forked-away
	// x1 entry and consult the neighbor it offloaded x1=true to. The
	// formula is only satisfiable via that forked branch.
	f, err := cnf.ParseSlice(2, [][]int{{1, 2}, {1, -2}})
	require.NoError(t, err)
	rep := driveTwoNodes(t, f, 256)
	require.Equal(t, cnf.Sat, rep.Status)
}
