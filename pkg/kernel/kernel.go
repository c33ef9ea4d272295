// Package kernel defines the meshing backend interface. Implementations
// (native, sdfx) turn a sampled scalar field into a triangle soup behind
// this interface, so the pipeline can swap algorithms without changing
// the rest of the system.
package kernel

import "github.com/chazu/isomesh/pkg/mcubes"

// Mesher is the abstract meshing backend.
type Mesher interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Triangulate returns the world-space triangles of f's isosurface at
	// threshold. The result length is a multiple of 3; every consecutive
	// triple is one triangle.
	Triangulate(f *mcubes.Field, threshold float32, g mcubes.Geometry) ([]mcubes.Vertex, error)
}
