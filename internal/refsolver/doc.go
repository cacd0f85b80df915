/*
Package refsolver wraps github.com/go-air/gini behind the same SAT/UNSAT
exit-code convention as any other external reference solver. It backs
cmd/satswarm-oracle, the self-contained default oracle subprocess: the
accelerator's own per-node DPLL logic (package node) never imports this
package or gini itself.
*/
package refsolver
