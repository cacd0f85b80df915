/*
Package node implements the per-node DPLL state machine of spec §4.C: a
closed five-state variant (Idle, Deciding, Substituting, Backtracking,
Reporting) over a local assignment buffer and a chronological-backtracking
decision stack.

A Node's Step is a pure function of its state at the start of the cycle
plus its inbox: every emitted effect — outgoing messages, the busy signal,
newly opened clause-store queries — is returned to the caller rather than
applied immediately, so that the sim driver can apply the double-buffered,
iteration-order-independent discipline required by spec §5.
*/
package node
