/*
Package oracle invokes an external reference SAT solver as a subprocess and
compares its verdict against a simulated run, per spec §4.F. The default
subprocess is cmd/satswarm-oracle, resolved on PATH; any other solver that
follows the same exit-code convention (10 sat, 20 unsat) works too.
*/
package oracle
