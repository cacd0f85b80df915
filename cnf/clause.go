package cnf

import "fmt"

// A Clause is an ordered tuple of literals. Clauses are numbered 0..C-1 in
// the Formula that owns them; that numbering is the canonical iteration
// order used by every node and by the clause store (spec §3).
type Clause struct {
	lits []Lit
}

// NewClause returns a clause whose literals are given as an argument.
func NewClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// Len returns the number of literals in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// Get returns the ith literal of the clause.
func (c *Clause) Get(i int) Lit {
	return c.lits[i]
}

// Lits returns the clause's literals. The caller must not mutate the
// returned slice: Formula is immutable once parsed.
func (c *Clause) Lits() []Lit {
	return c.lits
}

// CNF returns a DIMACS representation of the clause.
func (c *Clause) CNF() string {
	res := ""
	for _, lit := range c.lits {
		res += fmt.Sprintf("%d ", lit.Int())
	}
	return fmt.Sprintf("%s0", res)
}

func (c *Clause) String() string {
	res := "["
	for i, l := range c.lits {
		if i > 0 {
			res += ", "
		}
		res += fmt.Sprintf("%d", l.Int())
	}
	return res + "]"
}
