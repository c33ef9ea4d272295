// Package volume produces scalar fields for the marcher: by sampling
// signed distance functions, or by decoding sample grids from JSON and raw
// float32 files.
package volume

import (
	"math"

	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// SampleSDF evaluates s at every lattice point origin + i·cellSize and
// returns the distances as a field. Points inside the solid are negative,
// so a threshold of zero extracts its surface.
func SampleSDF(s sdf.SDF3, dims mcubes.Dims, g mcubes.Geometry) (*mcubes.Field, error) {
	if err := dims.Validate(); err != nil {
		return nil, errors.Wrap(err, "sample sdf")
	}
	if err := checkCellSize(g); err != nil {
		return nil, errors.Wrap(err, "sample sdf")
	}

	data := make([]float32, dims.Len())
	for x := 0; x < dims.X; x++ {
		px := float64(g.Origin[0]) + float64(x)*float64(g.CellSize[0])
		for y := 0; y < dims.Y; y++ {
			py := float64(g.Origin[1]) + float64(y)*float64(g.CellSize[1])
			for z := 0; z < dims.Z; z++ {
				pz := float64(g.Origin[2]) + float64(z)*float64(g.CellSize[2])
				data[dims.Index(x, y, z)] = float32(s.Evaluate(v3.Vec{X: px, Y: py, Z: pz}))
			}
		}
	}
	return mcubes.NewField(dims, data)
}

// FitGeometry returns the geometry whose lattice spans the bounding box of
// s grown by margin on every side.
func FitGeometry(s sdf.SDF3, dims mcubes.Dims, margin float64) (mcubes.Geometry, error) {
	if err := dims.Validate(); err != nil {
		return mcubes.Geometry{}, errors.Wrap(err, "fit geometry")
	}
	bb := s.BoundingBox()
	min := bb.Min.SubScalar(margin)
	size := bb.Size().AddScalar(2 * margin)

	g := mcubes.Geometry{
		Origin: mcubes.Vertex{float32(min.X), float32(min.Y), float32(min.Z)},
		CellSize: mcubes.Vertex{
			float32(size.X / float64(dims.X-1)),
			float32(size.Y / float64(dims.Y-1)),
			float32(size.Z / float64(dims.Z-1)),
		},
	}
	if err := checkCellSize(g); err != nil {
		return mcubes.Geometry{}, errors.Wrap(err, "fit geometry")
	}
	return g, nil
}

func checkCellSize(g mcubes.Geometry) error {
	for axis, size := range g.CellSize {
		if !(size > 0) || math.IsInf(float64(size), 0) {
			return errors.Wrapf(mcubes.ErrCellSize, "axis %d size %v", axis, size)
		}
	}
	return nil
}
