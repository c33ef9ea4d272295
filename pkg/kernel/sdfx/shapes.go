package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shape constructors used by the scene language. Shapes are signed
// distance functions; sampling one into a field and extracting the zero
// level set recovers its surface.

// Sphere creates a sphere of the given radius centered on the origin.
func Sphere(radius float64) (sdf.SDF3, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("sphere: radius %g must be positive", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sphere: %w", err)
	}
	return s, nil
}

// Box creates a box with the given dimensions. The box has its minimum
// corner at the origin, so (translate (box 2 2 2) (vec3 1 0 0)) spans
// x = 1..3.
func Box(x, y, z float64) (sdf.SDF3, error) {
	if !(x > 0 && y > 0 && z > 0) {
		return nil, fmt.Errorf("box: dimensions %g %g %g must be positive", x, y, z)
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	// sdf.Box3D is centered on the origin.
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return sdf.Transform3D(s, m), nil
}

// Cylinder creates a cylinder along z with the given height and radius,
// centered on the origin.
func Cylinder(height, radius float64) (sdf.SDF3, error) {
	if !(height > 0 && radius > 0) {
		return nil, fmt.Errorf("cylinder: height %g and radius %g must be positive", height, radius)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	return s, nil
}

// Union returns the union of the shapes.
func Union(shapes ...sdf.SDF3) sdf.SDF3 {
	return sdf.Union3D(shapes...)
}

// Difference returns a - b.
func Difference(a, b sdf.SDF3) sdf.SDF3 {
	return sdf.Difference3D(a, b)
}

// Intersection returns the intersection of a and b.
func Intersection(a, b sdf.SDF3) sdf.SDF3 {
	return sdf.Intersect3D(a, b)
}

// Translate moves s by (x, y, z).
func Translate(s sdf.SDF3, x, y, z float64) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates s by Euler angles in degrees around x, then y, then z.
func Rotate(s sdf.SDF3, x, y, z float64) sdf.SDF3 {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return sdf.Transform3D(s, m)
}
