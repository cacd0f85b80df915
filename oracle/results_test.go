package oracle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/satswarm/cnf"
)

func TestResultsWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := NewResultsWriter(&buf)

	require.NoError(t, rw.Write(ResultRow{
		File: "a.cnf", Topology: "grid(2x2)", Bandwidth: 2, ClauseWidth: 3,
		SimVerdict: cnf.Sat, OracleVerdict: cnf.Sat, Agreement: Match,
		Cycles: 10, BusyCycles: 7, IdleCycles: 3,
	}))
	require.NoError(t, rw.Write(ResultRow{
		File: "b.cnf", Topology: "grid(2x2)", Bandwidth: 2, ClauseWidth: 3,
		SimVerdict: cnf.Unsat, OracleVerdict: cnf.Sat, Agreement: Mismatch,
	}))
	require.NoError(t, rw.Flush())

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "file,topology,bandwidth,clause_width,sim_verdict,oracle_verdict,agreement,cycles,busy_cycles,idle_cycles", lines[0])
	require.Contains(t, lines[1], "a.cnf")
	require.Contains(t, lines[2], "MISMATCH")
}
