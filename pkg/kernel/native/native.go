// Package native implements the kernel.Mesher interface with the midpoint
// marching cubes of package mcubes.
package native

import (
	"fmt"

	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/mcubes"
)

// Compile-time interface check.
var _ kernel.Mesher = (*Mesher)(nil)

// Mesher marches every cell of a field and places vertices at the fixed
// edge midpoints. Output buffers are sized from a vertex count pass, never
// from the per-cell worst case.
type Mesher struct {
	// Workers > 1 marches cells concurrently and a negative value uses
	// GOMAXPROCS goroutines. The output is identical to the sequential
	// marcher either way.
	Workers int
}

// New returns a sequential Mesher.
func New() *Mesher {
	return &Mesher{}
}

// NewParallel returns a Mesher using the given number of goroutines;
// workers <= 0 uses GOMAXPROCS.
func NewParallel(workers int) *Mesher {
	if workers <= 0 {
		workers = -1
	}
	return &Mesher{Workers: workers}
}

// Name returns "native".
func (m *Mesher) Name() string {
	return "native"
}

// Triangulate marches f and returns exactly the emitted vertices. A count
// pass runs first, so memory is proportional to the surface rather than to
// the MaxVertexCount worst case of 16 vertices per cell.
func (m *Mesher) Triangulate(f *mcubes.Field, threshold float32, g mcubes.Geometry) ([]mcubes.Vertex, error) {
	workers := m.Workers
	if workers == 0 {
		workers = 1
	}
	vertices, err := mcubes.MarchExact(f, threshold, g, workers)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	return vertices, nil
}
