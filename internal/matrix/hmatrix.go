// Package matrix implements the HMatrix result tile and the parallel
// orchestrator that fills it (SPEC_FULL section 4.5). Storage, worker
// dispatch and the triangular-packing address math follow spec.md
// section 3/4.5/5 exactly.
package matrix

// Range is a half-open index range [I, N) into the input array.
type Range struct {
	I, N int
}

func (r Range) Len() int { return r.N - r.I }

// HMatrix is a rectangular tile of the full pairwise result.
type HMatrix struct {
	X, Y       Range
	Triangular bool
	values     []float32

	Labels  []float64 // borrowed, indexed like the input array
	Sources []string  // borrowed, indexed like the input array
}

// New allocates an HMatrix covering x columns by y rows. If x and y cover
// the same range and symmetric is true, the matrix is marked triangular
// and only its lower triangle (including the diagonal) is stored.
func New(x, y Range, symmetric bool, labels []float64, sources []string) *HMatrix {
	m := &HMatrix{X: x, Y: y, Labels: labels, Sources: sources}
	if x == y && symmetric {
		m.Triangular = true
		n := x.Len()
		m.values = make([]float32, n*(n+1)/2)
		return m
	}
	m.values = make([]float32, x.Len()*y.Len())
	return m
}

// packedIndex maps absolute input indices (col j, row i) to a storage
// offset, handling both layouts described in spec.md section 3.
func (m *HMatrix) packedIndex(j, i int) int {
	// j, i are absolute input-array indices; translate to tile-local.
	lj := j - m.X.I
	li := i - m.Y.I
	if m.Triangular {
		// triangular tiles only exist when X == Y, so lj/li share one
		// coordinate space; address (li,lj) with li>=lj, else swap.
		if li < lj {
			li, lj = lj, li
		}
		return li*(li+1)/2 + lj
	}
	return li*m.X.Len() + lj
}

// Get returns the value at absolute column j, row i. For a triangular
// matrix Get(j,i) == Get(i,j) for all valid (i,j): the swap happens
// transparently inside packedIndex.
func (m *HMatrix) Get(j, i int) float32 {
	return m.values[m.packedIndex(j, i)]
}

// Set stores v at absolute column j, row i. Each cell is written by
// exactly one worker during a fill, so Set needs no locking.
func (m *HMatrix) Set(j, i int, v float32) {
	m.values[m.packedIndex(j, i)] = v
}
