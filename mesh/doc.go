/*
Package mesh implements the interconnect of spec §4.D: the per-topology
neighbor map (Grid, Torus, Dense) and the bandwidth-limited, single-cycle-
latency delivery fabric that couples nodes to each other and to the shared
clause store.
*/
package mesh
