package refsolver

import (
	"fmt"
	"io"

	"github.com/go-air/gini"
)

// Solve reads a DIMACS CNF formula from r and reports whether it is
// satisfiable.
func Solve(r io.Reader) (sat bool, err error) {
	g, err := gini.NewDimacs(r)
	if err != nil {
		return false, fmt.Errorf("refsolver: parse: %w", err)
	}
	switch g.Solve() {
	case 1:
		return true, nil
	case -1:
		return false, nil
	default:
		return false, fmt.Errorf("refsolver: solve was canceled")
	}
}
