package engine

import (
	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/chazu/isomesh/pkg/tessellate"
)

// Scene is what a script describes: one sampled field and the options for
// extracting its surface.
type Scene struct {
	// Field is nil for an empty script.
	Field    *mcubes.Field
	Geometry mcubes.Geometry

	// Threshold defaults to 0, the surface of a sampled solid.
	Threshold float32

	// Range is nil unless the script sets :range.
	Range     *mcubes.ColorRange
	Normalize bool

	// Origin names the builtin that produced the field, "sample" or
	// "volume".
	Origin string
}

// IsEmpty returns true when the script defined no field.
func (s *Scene) IsEmpty() bool {
	return s.Field == nil
}

// Input returns the tessellation request for the scene.
func (s *Scene) Input(name string) tessellate.Input {
	return tessellate.Input{
		Name:      name,
		Field:     s.Field,
		Threshold: s.Threshold,
		Geometry:  s.Geometry,
		Range:     s.Range,
		Normalize: s.Normalize,
	}
}
