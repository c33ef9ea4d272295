package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func iotaField(t *testing.T) *mcubes.Field {
	t.Helper()
	data := make([]float32, 8)
	for i := range data {
		data[i] = float32(i)
	}
	f, err := mcubes.NewField(mcubes.Dims{X: 2, Y: 2, Z: 2}, data)
	if err != nil {
		t.Fatalf("NewField failed: %v", err)
	}
	return f
}

func distanceField(t *testing.T, n int) *mcubes.Field {
	t.Helper()
	dims := mcubes.Dims{X: n, Y: n, Z: n}
	data := make([]float32, dims.Len())
	c := float64(n-1) / 2
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				dx, dy, dz := float64(x)-c, float64(y)-c, float64(z)-c
				data[dims.Index(x, y, z)] = float32(math.Sqrt(dx*dx + dy*dy + dz*dz))
			}
		}
	}
	f, err := mcubes.NewField(dims, data)
	if err != nil {
		t.Fatalf("NewField failed: %v", err)
	}
	return f
}

func TestFieldSDFEvaluate(t *testing.T) {
	f := iotaField(t)
	s, err := NewFieldSDF(f, 0.5, mcubes.DefaultGeometry())
	if err != nil {
		t.Fatalf("NewFieldSDF failed: %v", err)
	}

	tests := []struct {
		name string
		p    v3.Vec
		want float64
	}{
		{"first sample", v3.Vec{X: 0, Y: 0, Z: 0}, -0.5},
		{"last sample", v3.Vec{X: 1, Y: 1, Z: 1}, 6.5},
		{"x neighbor", v3.Vec{X: 1, Y: 0, Z: 0}, 3.5},
		{"z neighbor", v3.Vec{X: 0, Y: 0, Z: 1}, 0.5},
		{"center", v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 3},
		{"below lattice", v3.Vec{X: -3, Y: -3, Z: -3}, -0.5},
		{"above lattice", v3.Vec{X: 9, Y: 9, Z: 9}, 6.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Evaluate(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%v) = %f, want %f", tt.p, got, tt.want)
			}
		})
	}
}

func TestFieldSDFGeometry(t *testing.T) {
	f := iotaField(t)
	g := mcubes.Geometry{CellSize: mcubes.Vertex{2, 3, 4}, Origin: mcubes.Vertex{10, 0, -4}}
	s, err := NewFieldSDF(f, 0, g)
	if err != nil {
		t.Fatalf("NewFieldSDF failed: %v", err)
	}

	bb := s.BoundingBox()
	if bb.Min != (v3.Vec{X: 10, Y: 0, Z: -4}) || bb.Max != (v3.Vec{X: 12, Y: 3, Z: 0}) {
		t.Errorf("BoundingBox() = %v, want [10 0 -4]..[12 3 0]", bb)
	}
	// Sample (1, 0, 0) is the fifth in x-major order.
	if got := s.Evaluate(v3.Vec{X: 12, Y: 0, Z: -4}); got != 4 {
		t.Errorf("Evaluate at sample (1,0,0) = %f, want 4", got)
	}
}

func TestNewFieldSDFErrors(t *testing.T) {
	f := iotaField(t)
	tests := []struct {
		name      string
		f         *mcubes.Field
		threshold float32
		g         mcubes.Geometry
		want      error
	}{
		{"short data", &mcubes.Field{Dims: mcubes.Dims{X: 2, Y: 2, Z: 2}}, 0, mcubes.DefaultGeometry(), mcubes.ErrFieldSize},
		{"infinite threshold", f, float32(math.Inf(1)), mcubes.DefaultGeometry(), mcubes.ErrThreshold},
		{"zero cell", f, 0, mcubes.Geometry{CellSize: mcubes.Vertex{1, 0, 1}}, mcubes.ErrCellSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFieldSDF(tt.f, tt.threshold, tt.g)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewFieldSDF() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTriangulateSphere(t *testing.T) {
	const radius = 3
	f := distanceField(t, 9)
	vertices, err := New().Triangulate(f, radius, mcubes.DefaultGeometry())
	if err != nil {
		t.Fatalf("Triangulate failed: %v", err)
	}
	if len(vertices) == 0 {
		t.Fatal("sphere produced no vertices")
	}
	if len(vertices)%3 != 0 {
		t.Fatalf("vertex count %d is not a multiple of 3", len(vertices))
	}

	// Interpolated vertices sit close to the true surface.
	const tol = 0.5
	for i, v := range vertices {
		dx, dy, dz := float64(v[0])-4, float64(v[1])-4, float64(v[2])-4
		d := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(d-radius) > tol {
			t.Fatalf("vertex %d %v is %f from the center, want ~%d", i, v, d, radius)
		}
	}
	t.Logf("sphere triangle count: %d", len(vertices)/3)
}

func TestTriangulateEmpty(t *testing.T) {
	f := distanceField(t, 5)
	vertices, err := New().Triangulate(f, -1, mcubes.DefaultGeometry())
	if err != nil {
		t.Fatalf("Triangulate failed: %v", err)
	}
	if len(vertices) != 0 {
		t.Errorf("got %d vertices, want 0", len(vertices))
	}
}

// --- shape constructors ---

func boundingBox(s sdf.SDF3) (min, max [3]float64) {
	bb := s.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

func checkBounds(t *testing.T, s sdf.SDF3, expectMin, expectMax [3]float64, tol float64) {
	t.Helper()
	min, max := boundingBox(s)
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	box, err := Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	checkBounds(t, box, [3]float64{0, 0, 0}, [3]float64{100, 50, 25}, 0.01)

	if d := box.Evaluate(v3.Vec{X: 50, Y: 25, Z: 12.5}); d >= 0 {
		t.Errorf("center distance = %f, want negative", d)
	}
}

func TestSphere(t *testing.T) {
	s, err := Sphere(2)
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	checkBounds(t, s, [3]float64{-2, -2, -2}, [3]float64{2, 2, 2}, 0.01)
	if d := s.Evaluate(v3.Vec{X: 3, Y: 0, Z: 0}); math.Abs(d-1) > 1e-9 {
		t.Errorf("distance at x=3 = %f, want 1", d)
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		make func() (sdf.SDF3, error)
	}{
		{"negative sphere", func() (sdf.SDF3, error) { return Sphere(-1) }},
		{"flat box", func() (sdf.SDF3, error) { return Box(1, 0, 1) }},
		{"thin cylinder", func() (sdf.SDF3, error) { return Cylinder(10, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.make(); err == nil {
				t.Errorf("%s succeeded, want error", tt.name)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	box, err := Box(10, 10, 10)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	translated := Translate(box, 100, 200, 300)
	checkBounds(t, translated, [3]float64{100, 200, 300}, [3]float64{110, 210, 310}, 0.5)
}

func TestRotate(t *testing.T) {
	box, err := Box(100, 10, 10)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	min, max := boundingBox(Rotate(box, 0, 0, 90))
	const tol = 1.0
	if xExtent := max[0] - min[0]; math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if yExtent := max[1] - min[1]; math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestBooleans(t *testing.T) {
	box1, _ := Box(100, 100, 100)
	box2, _ := Box(100, 100, 100)
	box2 = Translate(box2, 50, 0, 0)
	cyl, err := Cylinder(120, 20)
	if err != nil {
		t.Fatalf("Cylinder failed: %v", err)
	}
	cyl = Translate(cyl, 50, 50, 50)

	inside := v3.Vec{X: 75, Y: 50, Z: 50}
	hole := v3.Vec{X: 50, Y: 50, Z: 50}

	if d := Union(box1, box2).Evaluate(v3.Vec{X: 140, Y: 50, Z: 50}); d >= 0 {
		t.Errorf("union distance = %f, want negative", d)
	}
	if d := Intersection(box1, box2).Evaluate(v3.Vec{X: 25, Y: 50, Z: 50}); d <= 0 {
		t.Errorf("intersection distance outside overlap = %f, want positive", d)
	}
	if d := Intersection(box1, box2).Evaluate(inside); d >= 0 {
		t.Errorf("intersection distance inside overlap = %f, want negative", d)
	}
	if d := Difference(box1, cyl).Evaluate(hole); d <= 0 {
		t.Errorf("difference distance in hole = %f, want positive", d)
	}
}
