package mcubes

import "fmt"

// neighborStep is the world-space distance from a vertex to the samples
// consulted for its color.
const neighborStep = 1.0

// degenerateColor is the middle of the gradient.
var degenerateColor = Color{0.5, 0.5, 0}

// DegenerateColor returns the color assigned to vertices whose normal is
// zero on every axis, so no neighbor can be selected.
func DegenerateColor() Color {
	return degenerateColor
}

// ColorRange maps field values onto the red/green gradient. Min maps to
// green (0, 1, 0) and Max to red (1, 0, 0).
type ColorRange struct {
	Min, Max float32
	// Clamp limits the gradient position to [0, 1]. By default values
	// outside [Min, Max] produce channels outside [0, 1].
	Clamp bool
}

func (r ColorRange) validate() error {
	if !finite(r.Min) || !finite(r.Max) || r.Min == r.Max {
		return fmt.Errorf("[%v, %v]: %w", r.Min, r.Max, ErrColorRange)
	}
	return nil
}

// Percentage returns (value-Min)/(Max-Min), clamped when r.Clamp is set.
func (r ColorRange) Percentage(value float32) float32 {
	p := (value - r.Min) / (r.Max - r.Min)
	if r.Clamp {
		if p < 0 {
			p = 0
		} else if p > 1 {
			p = 1
		}
	}
	return p
}

// Color returns the gradient color of value.
func (r ColorRange) Color(value float32) Color {
	p := r.Percentage(value)
	return Color{p, 1 - p, 0}
}

// NeighborSamples are the field values one step away from a point along
// each axis. Every lattice index is clamped to the field independently.
type NeighborSamples struct {
	Top    float32 // +y
	Bottom float32 // -y
	Left   float32 // -x
	Right  float32 // +x
	Front  float32 // +z
	Back   float32 // -z
}

// Neighbors samples f around the world position v.
func Neighbors(f *Field, g Geometry, v Vertex) NeighborSamples {
	at := func(dx, dy, dz float32) float32 {
		x := latticeIndex(v[0]+dx, g.Origin[0], g.CellSize[0], f.X)
		y := latticeIndex(v[1]+dy, g.Origin[1], g.CellSize[1], f.Y)
		z := latticeIndex(v[2]+dz, g.Origin[2], g.CellSize[2], f.Z)
		return f.At(x, y, z)
	}
	return NeighborSamples{
		Top:    at(0, neighborStep, 0),
		Bottom: at(0, -neighborStep, 0),
		Left:   at(-neighborStep, 0, 0),
		Right:  at(neighborStep, 0, 0),
		Front:  at(0, 0, neighborStep),
		Back:   at(0, 0, -neighborStep),
	}
}

// latticeIndex converts a world coordinate into a sample index, clamped to
// [0, n-1] and truncated.
func latticeIndex(p, origin, size float32, n int) int {
	i := (p - origin) / size
	if !(i > 0) {
		return 0
	}
	if i > float32(n-1) {
		return n - 1
	}
	return int(i)
}

// MeanInDirection averages the neighbors selected by the signs of normal.
// ok is false when the normal is zero on every axis.
func (s NeighborSamples) MeanInDirection(normal Vertex) (mean float32, ok bool) {
	var sum float32
	var count int
	add := func(v float32) {
		sum += v
		count++
	}

	if normal[0] < 0 {
		add(s.Left)
	}
	if normal[0] > 0 {
		add(s.Right)
	}
	if normal[1] < 0 {
		add(s.Top)
	}
	if normal[1] > 0 {
		add(s.Bottom)
	}
	if normal[2] < 0 {
		add(s.Front)
	}
	if normal[2] > 0 {
		add(s.Back)
	}

	if count == 0 {
		return 0, false
	}
	return sum / float32(count), true
}

// MapColors writes a color for every vertex into dst. Each vertex's value is
// the mean of the neighbor samples picked by its normal, mapped through r.
// Vertices with a zero normal get DegenerateColor.
func MapColors(dst []Color, f *Field, g Geometry, vertices, normals []Vertex, r ColorRange) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if len(vertices) != len(normals) {
		return fmt.Errorf("%d vertices, %d normals: %w", len(vertices), len(normals), ErrLengthMismatch)
	}
	if len(dst) < len(vertices) {
		return fmt.Errorf("have %d colors, need %d: %w", len(dst), len(vertices), ErrBufferTooSmall)
	}
	if err := r.validate(); err != nil {
		return err
	}
	for axis, size := range g.CellSize {
		if size == 0 || !finite(size) {
			return fmt.Errorf("axis %d size %v: %w", axis, size, ErrCellSize)
		}
	}

	for i, v := range vertices {
		mean, ok := Neighbors(f, g, v).MeanInDirection(normals[i])
		if !ok {
			dst[i] = degenerateColor
			continue
		}
		dst[i] = r.Color(mean)
	}
	return nil
}
