package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/satswarm/cnf"
	"github.com/crillab/satswarm/mesh"
)

func runFormula(t *testing.T, f *cnf.Formula, topo mesh.Topology, bandwidth, cycleCap int) Result {
	t.Helper()
	d := New(f, topo, bandwidth, cycleCap, nil)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestDriverSingleVarSat(t *testing.T) {
	f, err := cnf.ParseSlice(1, [][]int{{1}})
	require.NoError(t, err)
	res := runFormula(t, f, mesh.NewDense(1), 4, 64)
	require.Equal(t, cnf.Sat, res.Verdict)
	require.True(t, res.Witness[0])
}

func TestDriverTwoClauseUnsat(t *testing.T) {
	f, err := cnf.ParseSlice(1, [][]int{{1}, {-1}})
	require.NoError(t, err)
	res := runFormula(t, f, mesh.NewDense(1), 4, 64)
	require.Equal(t, cnf.Unsat, res.Verdict)
}

func TestDriverSatAfterOneBacktrack(t *testing.T) {
	f, err := cnf.ParseSlice(2, [][]int{{1}, {-1, 2}})
	require.NoError(t, err)
	res := runFormula(t, f, mesh.NewDense(1), 4, 64)
	require.Equal(t, cnf.Sat, res.Verdict)
}

func TestDriverPigeonholeUnsat(t *testing.T) {
	// Two pigeons into one hole, under a unary (direct) encoding:
	// x1: pigeon A takes the hole. x2: pigeon B takes the hole.
	// (x1) and (x2) force both pigeons into the (single) hole, and
	// (-x1 v -x2) forbids them sharing it, so it is unsatisfiable.
	f, err := cnf.ParseSlice(2, [][]int{{1}, {2}, {-1, -2}})
	require.NoError(t, err)
	res := runFormula(t, f, mesh.NewDense(1), 4, 64)
	require.Equal(t, cnf.Unsat, res.Verdict)
}

func TestDriverForksAcrossMesh(t *testing.T) {
	// Enough independent variables, and enough idle neighbors, that the
	// root should offload at least one branch instead of solving alone.
	f, err := cnf.ParseSlice(3, [][]int{{1, 2, 3}, {-1, -2}, {-2, -3}, {-1, -3}})
	require.NoError(t, err)
	res := runFormula(t, f, mesh.NewDense(4), 4, 256)
	require.Equal(t, cnf.Sat, res.Verdict)
}

func TestDriverDeterministicAcrossBandwidth(t *testing.T) {
	f, err := cnf.ParseSlice(3, [][]int{{1, 2, 3}, {-1, -2}, {-2, -3}, {-1, -3}})
	require.NoError(t, err)
	low := runFormula(t, f, mesh.NewDense(4), 1, 512)
	high := runFormula(t, f, mesh.NewDense(4), 4, 512)
	require.Equal(t, low.Verdict, high.Verdict)
}

func TestDriverBusyIdleCountersSumToCyclesTimesNodes(t *testing.T) {
	// spec §8: "busy_cycles + idle_cycles = simulated_cycles x num_nodes
	// exactly" — every node contributes one busy-or-idle unit every cycle,
	// not just the mesh as a whole.
	f, err := cnf.ParseSlice(3, [][]int{{1, 2, 3}, {-1, -2}, {-2, -3}, {-1, -3}})
	require.NoError(t, err)
	topo := mesh.NewDense(4)
	res := runFormula(t, f, topo, 4, 4096)
	require.Equal(t, res.SimulatedCycles*topo.Size(), res.BusyCycles+res.IdleCycles)
}

func TestDriverCyclesNeverIncreaseWithMoreNodes(t *testing.T) {
	// Exactly-one-of-three: satisfiable only by picking a single variable
	// true, so a lone root must try and discard candidates sequentially
	// while a denser mesh can offload branches instead, so the dense-4-node
	// run must take no more cycles than the 1-node run.
	f, err := cnf.ParseSlice(3, [][]int{{1, 2, 3}, {-1, -2}, {-2, -3}, {-1, -3}})
	require.NoError(t, err)
	solo := runFormula(t, f, mesh.NewDense(1), 4, 4096)
	swarm := runFormula(t, f, mesh.NewDense(4), 4, 4096)
	require.Equal(t, solo.Verdict, swarm.Verdict)
	require.LessOrEqual(t, swarm.SimulatedCycles, solo.SimulatedCycles)
}

func TestDriverCyclesNeverIncreaseWithBandwidth(t *testing.T) {
	// spec §8: "increasing node_bandwidth/num_nodes never increases
	// simulated cycles" — a wider receive bandwidth can only let a node
	// drain its inbox faster, never slower.
	f, err := cnf.ParseSlice(3, [][]int{{1, 2, 3}, {-1, -2}, {-2, -3}, {-1, -3}})
	require.NoError(t, err)
	narrow := runFormula(t, f, mesh.NewDense(4), 1, 4096)
	wide := runFormula(t, f, mesh.NewDense(4), 8, 4096)
	require.Equal(t, narrow.Verdict, wide.Verdict)
	require.LessOrEqual(t, wide.SimulatedCycles, narrow.SimulatedCycles)
}

func TestDriverCycleCapYieldsUnknown(t *testing.T) {
	f, err := cnf.ParseSlice(1, [][]int{{1}})
	require.NoError(t, err)
	res := runFormula(t, f, mesh.NewDense(1), 1, 2)
	require.Equal(t, cnf.Unknown, res.Verdict)
}
