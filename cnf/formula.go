package cnf

import "fmt"

// A Formula is an immutable set of clauses over a fixed number of
// variables. It is loaded once and then shared, read-only, by index, from
// every node in the mesh and from the clause store (spec §3, Ownership).
type Formula struct {
	NbVars      int       // total number of variables
	ClauseWidth int       // k: the configured max literals per clause
	Clauses     []*Clause // clauses, in canonical iteration order
}

// NewFormula builds a Formula from already-constructed clauses.
func NewFormula(nbVars, clauseWidth int, clauses []*Clause) *Formula {
	return &Formula{NbVars: nbVars, ClauseWidth: clauseWidth, Clauses: clauses}
}

// NbClauses returns the number of clauses in the formula.
func (f *Formula) NbClauses() int {
	return len(f.Clauses)
}

// ClauseLens returns, for each clause in canonical order, its real literal
// count. Node buffers are always ClauseWidth-wide; slots beyond a given
// clause's length are permanently ABSENT (spec §3).
func (f *Formula) ClauseLens() []int {
	lens := make([]int, len(f.Clauses))
	for i, c := range f.Clauses {
		lens[i] = c.Len()
	}
	return lens
}

// CNF returns a DIMACS representation of the formula.
func (f *Formula) CNF() string {
	res := fmt.Sprintf("p cnf %d %d\n", f.NbVars, len(f.Clauses))
	for _, c := range f.Clauses {
		res += fmt.Sprintf("%s\n", c.CNF())
	}
	return res
}

// ParseSlice builds a Formula from a slice of slices of DIMACS literals.
// Each inner slice is one clause; it must not contain a trailing 0. A clause
// wider than clauseWidth, or a 0 literal, is rejected with an error; NbVars
// is the highest variable index seen.
func ParseSlice(clauseWidth int, cnf [][]int) (*Formula, error) {
	var (
		nbVars  int
		clauses []*Clause
	)
	for _, line := range cnf {
		if len(line) > clauseWidth {
			return nil, fmt.Errorf("clause %v has %d literals, wider than configured width %d", line, len(line), clauseWidth)
		}
		lits := make([]Lit, len(line))
		for j, val := range line {
			if val == 0 {
				return nil, fmt.Errorf("unexpected literal 0 inside clause %v", line)
			}
			lits[j] = IntToLit(val)
			if v := int(lits[j].Var()); v >= nbVars {
				nbVars = v + 1
			}
		}
		clauses = append(clauses, NewClause(lits))
	}
	return NewFormula(nbVars, clauseWidth, clauses), nil
}
