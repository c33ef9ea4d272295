package mcubes

import "fmt"

// MaxVertexCount returns (X-1)(Y-1)(Z-1)·16, the buffer size March requires.
func MaxVertexCount(dims Dims) int {
	return dims.Cells() * MaxCellVertices
}

// March triangulates every interior cell of f and writes the world-space
// vertices to dst. Cells are visited with x outermost and z innermost, the
// same order as the field's layout. It returns the number of vertices
// written, always a multiple of 3.
//
// dst must hold at least MaxVertexCount(f.Dims) vertices; the check happens
// before any cell is processed.
func March(dst []Vertex, f *Field, threshold float32, g Geometry) (int, error) {
	if err := checkMarch(dst, f, threshold); err != nil {
		return 0, err
	}

	n := 0
	for x := 0; x < f.X-1; x++ {
		for y := 0; y < f.Y-1; y++ {
			for z := 0; z < f.Z-1; z++ {
				n += marchCell(dst[n:], f, threshold, g, x, y, z)
			}
		}
	}
	return n, nil
}

// CountVertices returns the exact number of vertices March would emit.
func CountVertices(f *Field, threshold float32) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if !finite(threshold) {
		return 0, fmt.Errorf("%v: %w", threshold, ErrThreshold)
	}

	n := 0
	for x := 0; x < f.X-1; x++ {
		for y := 0; y < f.Y-1; y++ {
			for z := 0; z < f.Z-1; z++ {
				n += VertexCount(Classify(CellCorners(f, x, y, z), threshold))
			}
		}
	}
	return n, nil
}

func checkMarch(dst []Vertex, f *Field, threshold float32) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if !finite(threshold) {
		return fmt.Errorf("%v: %w", threshold, ErrThreshold)
	}
	if max := MaxVertexCount(f.Dims); len(dst) < max {
		return fmt.Errorf("have %d vertices, need %d: %w", len(dst), max, ErrBufferTooSmall)
	}
	return nil
}
