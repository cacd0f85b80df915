/*
Package sim drives the cycle-accurate lock-step loop of spec §4.E: every
cycle, every node and the shared clause store are stepped exactly once
against the inboxes visible at the start of that cycle, and every effect
they produce becomes visible only at the start of the next cycle (the
double-buffered discipline implemented by mesh.Fabric).

The loop never special-cases iteration order: which node is stepped first
in a given cycle has no effect on the run, because no node's Step can
observe another node's effects from the same cycle.
*/
package sim
