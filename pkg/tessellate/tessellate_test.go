package tessellate

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/kernel/native"
	"github.com/chazu/isomesh/pkg/kernel/sdfx"
	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// centerField is a 3x3x3 field of ones with a zero in the middle.
func centerField(t *testing.T) *mcubes.Field {
	t.Helper()
	dims := mcubes.Dims{X: 3, Y: 3, Z: 3}
	data := make([]float32, dims.Len())
	for i := range data {
		data[i] = 1
	}
	data[dims.Index(1, 1, 1)] = 0
	f, err := mcubes.NewField(dims, data)
	require.NoError(t, err)
	return f
}

// failingMesher always fails to triangulate.
type failingMesher struct{}

func (failingMesher) Name() string { return "failing" }

func (failingMesher) Triangulate(*mcubes.Field, float32, mcubes.Geometry) ([]mcubes.Vertex, error) {
	return nil, fmt.Errorf("failing: out of memory")
}

func TestTessellateCenter(t *testing.T) {
	f := centerField(t)
	g := mcubes.DefaultGeometry()

	m, err := Tessellate(context.Background(), Input{
		Name:      "center",
		Field:     f,
		Threshold: 0.5,
		Geometry:  g,
	}, native.New())
	require.NoError(t, err)
	require.Equal(t, "center", m.Name)
	require.Equal(t, 24, m.VertexCount())
	require.Equal(t, 8, m.TriangleCount())

	// The same pipeline spelled out with the core package.
	vertices := make([]mcubes.Vertex, mcubes.MaxVertexCount(f.Dims))
	n, err := mcubes.March(vertices, f, 0.5, g)
	require.NoError(t, err)
	vertices = vertices[:n]
	normals := make([]mcubes.Vertex, n)
	require.NoError(t, mcubes.Normals(normals, vertices))
	colors := make([]mcubes.Color, n)
	require.NoError(t, mcubes.MapColors(colors, f, g, vertices, normals, mcubes.ColorRange{Min: 0, Max: 1}))

	require.Equal(t, kernel.NewMesh(vertices, normals, colors).Vertices, m.Vertices)
	require.Equal(t, kernel.NewMesh(vertices, normals, colors).Normals, m.Normals)
	require.Equal(t, kernel.NewMesh(vertices, normals, colors).Colors, m.Colors)
}

func TestTessellateNormalize(t *testing.T) {
	m, err := Tessellate(context.Background(), Input{
		Field:     centerField(t),
		Threshold: 0.5,
		Geometry:  mcubes.DefaultGeometry(),
		Normalize: true,
	}, native.New())
	require.NoError(t, err)

	for i := 0; i < m.VertexCount(); i++ {
		n := m.Normal(i)
		require.InDelta(t, 1, n.Length(), 1e-6, "normal %d", i)
	}
}

func TestTessellateRange(t *testing.T) {
	in := Input{
		Field:     centerField(t),
		Threshold: 0.5,
		Geometry:  mcubes.DefaultGeometry(),
		Range:     &mcubes.ColorRange{Min: 2, Max: 4},
	}

	m, err := Tessellate(context.Background(), in, native.New())
	require.NoError(t, err)
	// Every neighbor value is at most 1, so the red channel goes negative.
	for i := 0; i < m.VertexCount(); i++ {
		require.Less(t, m.Color(i)[0], float32(0))
	}

	in.Range.Clamp = true
	m, err = Tessellate(context.Background(), in, native.New())
	require.NoError(t, err)
	for i := 0; i < m.VertexCount(); i++ {
		require.Equal(t, mcubes.Color{0, 1, 0}, m.Color(i))
	}
}

func TestTessellateEmpty(t *testing.T) {
	m, err := Tessellate(context.Background(), Input{
		Name:      "empty",
		Field:     centerField(t),
		Threshold: -1,
		Geometry:  mcubes.DefaultGeometry(),
	}, native.New())
	require.NoError(t, err)
	require.True(t, m.IsEmpty())
	require.Equal(t, "empty", m.Name)
}

func TestTessellateSdfxBackend(t *testing.T) {
	m, err := Tessellate(context.Background(), Input{
		Field:     centerField(t),
		Threshold: 0.9,
		Geometry:  mcubes.DefaultGeometry(),
	}, &sdfx.SdfxMesher{Cells: 8})
	require.NoError(t, err)
	require.False(t, m.IsEmpty())
	require.Len(t, m.Colors, len(m.Vertices))
	require.Len(t, m.Normals, len(m.Vertices))
}

func TestTessellateErrors(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		in      Input
		k       kernel.Mesher
		errType string
	}{
		{
			name:    "no field",
			ctx:     context.Background(),
			in:      Input{Threshold: 0.5},
			k:       native.New(),
			errType: ErrTypeInvalidInput,
		},
		{
			name:    "short field",
			ctx:     context.Background(),
			in:      Input{Field: &mcubes.Field{Dims: mcubes.Dims{X: 2, Y: 2, Z: 2}}},
			k:       native.New(),
			errType: ErrTypeInvalidInput,
		},
		{
			name:    "canceled",
			ctx:     canceled,
			in:      Input{Field: centerField(t), Threshold: 0.5, Geometry: mcubes.DefaultGeometry()},
			k:       native.New(),
			errType: ErrTypeCanceled,
		},
		{
			name:    "backend failure",
			ctx:     context.Background(),
			in:      Input{Field: centerField(t), Threshold: 0.5, Geometry: mcubes.DefaultGeometry()},
			k:       failingMesher{},
			errType: ErrTypeMesh,
		},
		{
			name:    "nan threshold",
			ctx:     context.Background(),
			in:      Input{Field: centerField(t), Threshold: float32(math.NaN()), Geometry: mcubes.DefaultGeometry()},
			k:       native.New(),
			errType: ErrTypeMesh,
		},
		{
			name: "empty color range",
			ctx:  context.Background(),
			in: Input{
				Field:     centerField(t),
				Threshold: 0.5,
				Geometry:  mcubes.DefaultGeometry(),
				Range:     &mcubes.ColorRange{Min: 1, Max: 1},
			},
			k:       native.New(),
			errType: ErrTypeColors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := tessellationErrors.With(prometheus.Labels{
				backendLabel: tt.k.Name(),
				errTypeLabel: tt.errType,
			})
			before := testutil.ToFloat64(counter)

			m, err := Tessellate(tt.ctx, tt.in, tt.k)
			require.Error(t, err)
			require.Nil(t, m)
			require.True(t, errors.IsType(err, tt.errType), "error type = %q, want %q", errors.Type(err), tt.errType)
			require.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestTessellateMetrics(t *testing.T) {
	counter := tessellations.With(prometheus.Labels{backendLabel: "native"})
	before := testutil.ToFloat64(counter)

	_, err := Tessellate(context.Background(), Input{
		Field:     centerField(t),
		Threshold: 0.5,
		Geometry:  mcubes.DefaultGeometry(),
	}, native.New())
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestColorRange(t *testing.T) {
	constant, err := mcubes.NewField(mcubes.Dims{X: 2, Y: 2, Z: 2}, []float32{3, 3, 3, 3, 3, 3, 3, 3})
	require.NoError(t, err)
	nan := float32(math.NaN())
	allNaN, err := mcubes.NewField(mcubes.Dims{X: 2, Y: 2, Z: 2}, []float32{nan, nan, nan, nan, nan, nan, nan, nan})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   Input
		want mcubes.ColorRange
	}{
		{"explicit", Input{Field: constant, Range: &mcubes.ColorRange{Min: -1, Max: 1, Clamp: true}}, mcubes.ColorRange{Min: -1, Max: 1, Clamp: true}},
		{"field spread", Input{Field: centerField(t)}, mcubes.ColorRange{Min: 0, Max: 1}},
		{"constant field", Input{Field: constant}, mcubes.ColorRange{Min: 3, Max: 4}},
		{"no finite samples", Input{Field: allNaN}, mcubes.ColorRange{Min: 0, Max: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, colorRange(tt.in))
		})
	}
}
