package mcubes

import (
	"fmt"
	"math"

	"github.com/flywave/go3d/vec3"
)

// Vertex is a position in space. Vertices have no identity beyond their
// coordinates and are copied freely.
type Vertex = vec3.T

// Color is an (r, g, b) triple. Channels are not clamped to [0, 1].
type Color = vec3.T

// Dims are the sample counts of a field along each axis.
type Dims struct {
	X, Y, Z int
}

// Validate checks that every axis has at least one interior cell and that
// the worst-case vertex count, (X-1)(Y-1)(Z-1)·16, fits in an int.
func (d Dims) Validate() error {
	if d.X < 2 || d.Y < 2 || d.Z < 2 {
		return fmt.Errorf("%dx%dx%d: %w", d.X, d.Y, d.Z, ErrDims)
	}
	n := MaxCellVertices
	for _, v := range [3]int{d.X, d.Y, d.Z} {
		if n > math.MaxInt/v {
			return fmt.Errorf("%dx%dx%d: %w", d.X, d.Y, d.Z, ErrDimsOverflow)
		}
		n *= v
	}
	return nil
}

// Len returns the number of samples, X·Y·Z.
func (d Dims) Len() int {
	return d.X * d.Y * d.Z
}

// Cells returns the number of interior cells, (X-1)(Y-1)(Z-1).
func (d Dims) Cells() int {
	return (d.X - 1) * (d.Y - 1) * (d.Z - 1)
}

// Index returns the linear index of sample (x, y, z). Z varies fastest,
// then Y, then X.
func (d Dims) Index(x, y, z int) int {
	return z + y*d.Z + x*d.Y*d.Z
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// Field is a scalar field sampled on a regular grid.
type Field struct {
	Dims
	Data []float32
}

// NewField wraps data as a field with the given dimensions. The slice is
// not copied.
func NewField(dims Dims, data []float32) (*Field, error) {
	f := &Field{Dims: dims, Data: data}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the dimensions and the sample count.
func (f *Field) Validate() error {
	if err := f.Dims.Validate(); err != nil {
		return err
	}
	if len(f.Data) != f.Len() {
		return fmt.Errorf("%d samples for %s: %w", len(f.Data), f.Dims, ErrFieldSize)
	}
	return nil
}

// At returns sample (x, y, z).
func (f *Field) At(x, y, z int) float32 {
	return f.Data[f.Index(x, y, z)]
}

// MinMax returns the smallest and largest finite samples. ok is false when
// the field holds no finite sample.
func (f *Field) MinMax() (min, max float32, ok bool) {
	for _, v := range f.Data {
		if !finite(v) {
			continue
		}
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// Geometry places a field in world space.
type Geometry struct {
	// CellSize is the physical extent of one cell along x, y and z.
	CellSize Vertex
	// Origin is the world position of sample (0, 0, 0).
	Origin Vertex
}

// DefaultGeometry returns unit cells anchored at the origin.
func DefaultGeometry() Geometry {
	return Geometry{CellSize: Vertex{1, 1, 1}}
}

// cellOrigin returns the world position of the minimum corner of cell (x, y, z).
func (g Geometry) cellOrigin(x, y, z int) Vertex {
	return Vertex{
		g.Origin[0] + float32(x)*g.CellSize[0],
		g.Origin[1] + float32(y)*g.CellSize[1],
		g.Origin[2] + float32(z)*g.CellSize[2],
	}
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
