/*
Package clausetable implements the shared clause look-up service of spec
§4.A: on a substitution or reset query for a variable, it streams back one
per-clause mask per cycle, in canonical clause order, mirroring the
envisioned hardware where the look-up table emits one clause per cycle over
a serial port.

Requests are serialised; when more than one node has an outstanding query,
the store interleaves them fairly, round-robin over waiters, advancing at
most one mask per cycle per stream (spec §4.A, §5: "the cycle accounting
must still charge one mask per cycle per stream to mirror hardware
behavior").
*/
package clausetable
