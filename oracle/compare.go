package oracle

import "github.com/crillab/satswarm/cnf"

// Agreement is the outcome of comparing a simulated verdict against the
// reference solver's verdict for the same benchmark (spec §4.F, §6).
type Agreement byte

const (
	// Match means the simulator and the oracle reached the same verdict.
	Match Agreement = iota
	// Mismatch means they reached opposite SAT/UNSAT verdicts: a
	// correctness bug in the simulated DPLL logic.
	Mismatch
	// Inconclusive means one side (almost always the simulator, via its
	// cycle cap) never reached a verdict at all.
	Inconclusive
)

func (a Agreement) String() string {
	switch a {
	case Match:
		return "MATCH"
	case Mismatch:
		return "MISMATCH"
	case Inconclusive:
		return "INCONCLUSIVE"
	default:
		return "INVALID"
	}
}

// Compare reports how a simulated verdict relates to the oracle's.
func Compare(simVerdict, oracleVerdict cnf.Status) Agreement {
	if simVerdict == cnf.Unknown || oracleVerdict == cnf.Unknown {
		return Inconclusive
	}
	if simVerdict == oracleVerdict {
		return Match
	}
	return Mismatch
}
