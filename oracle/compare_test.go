package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/satswarm/cnf"
)

func TestCompare(t *testing.T) {
	require.Equal(t, Match, Compare(cnf.Sat, cnf.Sat))
	require.Equal(t, Match, Compare(cnf.Unsat, cnf.Unsat))
	require.Equal(t, Mismatch, Compare(cnf.Sat, cnf.Unsat))
	require.Equal(t, Mismatch, Compare(cnf.Unsat, cnf.Sat))
	require.Equal(t, Inconclusive, Compare(cnf.Unknown, cnf.Sat))
	require.Equal(t, Inconclusive, Compare(cnf.Sat, cnf.Unknown))
}

func TestVerdictLines(t *testing.T) {
	require.Equal(t, []string{"SAT"}, verdictLines("c comment\nSAT\nv 1 -2 0\n"))
	require.Equal(t, []string{"UNSAT"}, verdictLines("UNSAT\n"))
	require.Empty(t, verdictLines("c nothing useful\n"))
}
