package mesh

import (
	"fmt"
	"math"
	"sort"
)

// Topology exposes, for a fixed number of nodes, the ascending neighbor
// list of each node (spec §4.D). Ascending order matters: the node's
// lowest-free-neighbor tie-break (spec §4.C) depends on it.
type Topology interface {
	Size() int
	Neighbors(id int) []int
	Name() string
}

// GridDims returns the rows/cols used by Grid and Torus when only a node
// count is given: floor(sqrt(N)) x ceil(N/floor(sqrt(N))) (spec §4.D).
func GridDims(n int) (rows, cols int) {
	rows = int(math.Sqrt(float64(n)))
	if rows < 1 {
		rows = 1
	}
	cols = (n + rows - 1) / rows
	return rows, cols
}

type gridTopology struct {
	rows, cols int
	torus      bool
	neighbors  [][]int
}

// NewGrid builds a 4-neighborhood grid topology with no wraparound:
// corner and edge nodes simply have fewer neighbors (spec §4.D).
func NewGrid(rows, cols int) Topology {
	return buildGrid(rows, cols, false)
}

// NewTorus builds a 4-neighborhood grid topology that wraps on both axes
// (spec §4.D).
func NewTorus(rows, cols int) Topology {
	return buildGrid(rows, cols, true)
}

func buildGrid(rows, cols int, torus bool) *gridTopology {
	n := rows * cols
	neighbors := make([][]int, n)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			id := row*cols + col
			var ns []int
			if row > 0 {
				ns = append(ns, id-cols)
			} else if torus && rows > 1 {
				ns = append(ns, (rows-1)*cols+col)
			}
			if col > 0 {
				ns = append(ns, id-1)
			} else if torus && cols > 1 {
				ns = append(ns, row*cols+cols-1)
			}
			if row < rows-1 {
				ns = append(ns, id+cols)
			} else if torus && rows > 1 {
				ns = append(ns, col)
			}
			if col < cols-1 {
				ns = append(ns, id+1)
			} else if torus && cols > 1 {
				ns = append(ns, row*cols)
			}
			ns = dedupSorted(ns)
			neighbors[id] = ns
		}
	}
	return &gridTopology{rows: rows, cols: cols, torus: torus, neighbors: neighbors}
}

func (g *gridTopology) Size() int { return g.rows * g.cols }

func (g *gridTopology) Neighbors(id int) []int { return g.neighbors[id] }

func (g *gridTopology) Name() string {
	if g.torus {
		return fmt.Sprintf("torus(%dx%d)", g.rows, g.cols)
	}
	return fmt.Sprintf("grid(%dx%d)", g.rows, g.cols)
}

type denseTopology struct {
	n         int
	neighbors [][]int
}

// NewDense builds a topology where every node neighbors every other node
// (spec §4.D).
func NewDense(n int) Topology {
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		ns := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				ns = append(ns, j)
			}
		}
		neighbors[i] = ns
	}
	return &denseTopology{n: n, neighbors: neighbors}
}

func (d *denseTopology) Size() int { return d.n }

func (d *denseTopology) Neighbors(id int) []int { return d.neighbors[id] }

func (d *denseTopology) Name() string { return fmt.Sprintf("dense(%d)", d.n) }

func dedupSorted(ns []int) []int {
	sort.Ints(ns)
	out := ns[:0]
	var last int
	first := true
	for _, n := range ns {
		if first || n != last {
			out = append(out, n)
			last = n
			first = false
		}
	}
	return out
}
