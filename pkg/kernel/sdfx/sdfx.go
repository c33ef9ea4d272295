// Package sdfx implements the kernel.Mesher interface using the
// github.com/deadsy/sdfx marching cubes renderer. Unlike the native
// backend it interpolates vertex positions along each edge, which makes it
// a useful reference for the midpoint meshes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Mesher = (*SdfxMesher)(nil)

// SdfxMesher implements kernel.Mesher using sdfx.
type SdfxMesher struct {
	// Cells overrides the renderer resolution along the longest axis. Zero
	// uses one renderer cell per field cell.
	Cells int
}

// New returns a new SdfxMesher.
func New() *SdfxMesher {
	return &SdfxMesher{}
}

// Name returns "sdfx".
func (k *SdfxMesher) Name() string {
	return "sdfx"
}

// Triangulate renders f with sdfx's uniform marching cubes.
func (k *SdfxMesher) Triangulate(f *mcubes.Field, threshold float32, g mcubes.Geometry) ([]mcubes.Vertex, error) {
	s, err := NewFieldSDF(f, threshold, g)
	if err != nil {
		return nil, err
	}

	cells := k.Cells
	if cells <= 0 {
		cells = max(f.X, f.Y, f.Z) - 1
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	vertices := make([]mcubes.Vertex, 0, len(triangles)*3)
	for _, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, mcubes.Vertex{float32(v.X), float32(v.Y), float32(v.Z)})
		}
	}
	return vertices, nil
}

// FieldSDF exposes a sampled field as an sdf.SDF3. The field is
// trilinearly interpolated and shifted so that values below the threshold
// are negative, which sdfx treats as inside.
type FieldSDF struct {
	field     *mcubes.Field
	threshold float64
	geometry  mcubes.Geometry
	bb        sdf.Box3
}

// Compile-time interface check.
var _ sdf.SDF3 = (*FieldSDF)(nil)

// NewFieldSDF wraps f. The bounding box spans the sample lattice.
func NewFieldSDF(f *mcubes.Field, threshold float32, g mcubes.Geometry) (*FieldSDF, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	if math.IsNaN(float64(threshold)) || math.IsInf(float64(threshold), 0) {
		return nil, fmt.Errorf("sdfx: %v: %w", threshold, mcubes.ErrThreshold)
	}
	for axis, size := range g.CellSize {
		if !(size > 0) {
			return nil, fmt.Errorf("sdfx: axis %d size %v: %w", axis, size, mcubes.ErrCellSize)
		}
	}

	min := v3.Vec{X: float64(g.Origin[0]), Y: float64(g.Origin[1]), Z: float64(g.Origin[2])}
	extent := v3.Vec{
		X: float64(f.X-1) * float64(g.CellSize[0]),
		Y: float64(f.Y-1) * float64(g.CellSize[1]),
		Z: float64(f.Z-1) * float64(g.CellSize[2]),
	}
	return &FieldSDF{
		field:     f,
		threshold: float64(threshold),
		geometry:  g,
		bb:        sdf.Box3{Min: min, Max: min.Add(extent)},
	}, nil
}

// BoundingBox returns the lattice bounds.
func (s *FieldSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// Evaluate returns the interpolated field value at p minus the threshold.
// Points outside the lattice take the value of the nearest face.
func (s *FieldSDF) Evaluate(p v3.Vec) float64 {
	x, x0, x1 := s.axis(p.X, 0, s.field.X)
	y, y0, y1 := s.axis(p.Y, 1, s.field.Y)
	z, z0, z1 := s.axis(p.Z, 2, s.field.Z)

	at := func(i, j, k int) float64 {
		return float64(s.field.At(i, j, k))
	}
	c00 := lerp(at(x0, y0, z0), at(x1, y0, z0), x)
	c01 := lerp(at(x0, y0, z1), at(x1, y0, z1), x)
	c10 := lerp(at(x0, y1, z0), at(x1, y1, z0), x)
	c11 := lerp(at(x0, y1, z1), at(x1, y1, z1), x)
	c0 := lerp(c00, c10, y)
	c1 := lerp(c01, c11, y)
	return lerp(c0, c1, z) - s.threshold
}

// axis converts a world coordinate into the two bracketing sample indices
// and the fraction between them.
func (s *FieldSDF) axis(p float64, axis, n int) (frac float64, i0, i1 int) {
	u := (p - float64(s.geometry.Origin[axis])) / float64(s.geometry.CellSize[axis])
	if u <= 0 {
		return 0, 0, 0
	}
	if u >= float64(n-1) {
		return 0, n - 1, n - 1
	}
	i0 = int(math.Floor(u))
	return u - float64(i0), i0, i0 + 1
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
