package mcubes

import "errors"

var (
	// ErrDims is returned when a grid dimension is smaller than 2.
	ErrDims = errors.New("grid dimensions must each be at least 2")

	// ErrDimsOverflow is returned when the worst-case vertex count of a grid
	// does not fit in an int.
	ErrDimsOverflow = errors.New("grid dimensions overflow the vertex count")

	// ErrFieldSize is returned when the sample count does not match the dimensions.
	ErrFieldSize = errors.New("field length does not match dimensions")

	// ErrBufferTooSmall is returned when an output buffer cannot hold the
	// documented maximum.
	ErrBufferTooSmall = errors.New("output buffer too small")

	// ErrThreshold is returned for NaN or infinite thresholds.
	ErrThreshold = errors.New("threshold must be finite")

	// ErrVertexCount is returned when a vertex sequence is not made of whole triangles.
	ErrVertexCount = errors.New("vertex count is not a multiple of 3")

	// ErrLengthMismatch is returned when parallel sequences differ in length.
	ErrLengthMismatch = errors.New("vertex and normal counts differ")

	// ErrColorRange is returned when a color range is empty or not finite.
	ErrColorRange = errors.New("color range must be finite with min != max")

	// ErrCellSize is returned when a cell size component is zero or not finite.
	ErrCellSize = errors.New("cell size must be finite and non-zero")
)
