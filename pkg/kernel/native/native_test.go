package native

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/isomesh/pkg/mcubes"
)

// sphereField samples the distance from the center of an n³ lattice.
func sphereField(t *testing.T, n int) *mcubes.Field {
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
		t.Fatalf("NewField() error = %v", err)
	}
	return f
}

func TestTriangulateMatchesMarch(t *testing.T) {
	f := sphereField(t, 9)
	g := mcubes.Geometry{CellSize: mcubes.Vertex{0.5, 1, 2}, Origin: mcubes.Vertex{-1, 0, 3}}

	want := make([]mcubes.Vertex, mcubes.MaxVertexCount(f.Dims))
	n, err := mcubes.March(want, f, 3, g)
	if err != nil {
		t.Fatalf("March() error = %v", err)
	}
	want = want[:n]

	tests := []struct {
		name string
		m    *Mesher
	}{
		{"sequential", New()},
		{"two workers", &Mesher{Workers: 2}},
		{"gomaxprocs", NewParallel(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.m.Triangulate(f, 3, g)
			if err != nil {
				t.Fatalf("Triangulate() error = %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("len = %d, want %d", len(got), len(want))
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("vertex %d = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestTriangulateEmpty(t *testing.T) {
	f := sphereField(t, 5)
	got, err := New().Triangulate(f, -1, mcubes.DefaultGeometry())
	if err != nil {
		t.Fatalf("Triangulate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestTriangulateErrors(t *testing.T) {
	tests := []struct {
		name      string
		f         *mcubes.Field
		threshold float32
		want      error
	}{
		{"flat dims", &mcubes.Field{Dims: mcubes.Dims{X: 1, Y: 2, Z: 2}, Data: make([]float32, 4)}, 0, mcubes.ErrDims},
		{"short data", &mcubes.Field{Dims: mcubes.Dims{X: 2, Y: 2, Z: 2}, Data: make([]float32, 7)}, 0, mcubes.ErrFieldSize},
		{"nan threshold", &mcubes.Field{Dims: mcubes.Dims{X: 2, Y: 2, Z: 2}, Data: make([]float32, 8)}, float32(math.NaN()), mcubes.ErrThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Triangulate(tt.f, tt.threshold, mcubes.DefaultGeometry())
			if !errors.Is(err, tt.want) {
				t.Errorf("Triangulate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if got := New().Name(); got != "native" {
		t.Errorf("Name() = %q, want %q", got, "native")
	}
}

func TestTriangulateSizedToSurface(t *testing.T) {
	f := sphereField(t, 17)
	want, err := mcubes.CountVertices(f, 5)
	if err != nil {
		t.Fatalf("CountVertices() error = %v", err)
	}

	for _, m := range []*Mesher{New(), NewParallel(3)} {
		got, err := m.Triangulate(f, 5, mcubes.DefaultGeometry())
		if err != nil {
			t.Fatalf("Triangulate() error = %v", err)
		}
		if len(got) != want || cap(got) != want {
			t.Errorf("workers=%d: len %d cap %d, want exactly %d (worst case %d)",
				m.Workers, len(got), cap(got), want, mcubes.MaxVertexCount(f.Dims))
		}
	}
}
