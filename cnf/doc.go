/*
Package cnf describes the shared, read-only CNF data model used throughout
SatSwarm: variables, literals, clauses and whole formulas.

A Formula is parsed once (from a DIMACS file, or programmatically via
ParseSlice) and is then referenced by index from every node in the mesh and
from the clause store. Nothing in this package ever mutates a Formula after
construction; per-node working state (which terms are satisfied or
falsified) lives in the node package instead.
*/
package cnf
