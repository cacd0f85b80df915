// Command satswarm-oracle is a self-contained reference SAT solver: it
// reads a DIMACS CNF file and reports SAT/UNSAT with the same exit-code
// convention (10 sat, 20 unsat) used by minisat/kissat-style subprocess
// wrappers, so that oracle.Solver can shell out to it exactly as it would
// to any other external reference solver.
package main

import (
	"fmt"
	"os"

	"github.com/crillab/satswarm/internal/refsolver"
)

const (
	exitSat   = 10
	exitUnsat = 20
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: satswarm-oracle <file.cnf>")
		os.Exit(2)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "satswarm-oracle: %v\n", err)
		os.Exit(2)
	}
	defer f.Close()

	sat, err := refsolver.Solve(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "satswarm-oracle: %v\n", err)
		os.Exit(2)
	}

	if sat {
		fmt.Println("SAT")
		os.Exit(exitSat)
	}
	fmt.Println("UNSAT")
	os.Exit(exitUnsat)
}
