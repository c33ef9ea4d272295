// Package tessellate turns a scalar field into a colored triangle mesh
// using a marching cubes backend. The pipeline is: mesh the field, estimate
// one flat normal per triangle, color every vertex from the samples its
// normal points at, and flatten the result into a kernel.Mesh.
package tessellate

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/mcubes"
)

// Error types reported by Tessellate. They label the error metric.
const (
	ErrTypeInvalidInput = "invalid_input"
	ErrTypeMesh         = "mesh_failed"
	ErrTypeNormals      = "normals_failed"
	ErrTypeColors       = "colors_failed"
	ErrTypeCanceled     = "canceled"
)

// Input is one surface extraction request.
type Input struct {
	// Name is copied to the resulting mesh.
	Name string

	Field     *mcubes.Field
	Threshold float32
	Geometry  mcubes.Geometry

	// Range maps neighbor values to colors. Nil uses the field's finite
	// minimum and maximum.
	Range *mcubes.ColorRange

	// Normalize rescales the flat normals to unit length.
	Normalize bool
}

// Tessellate runs the pipeline for in with backend k.
func Tessellate(ctx context.Context, in Input, k kernel.Mesher) (*kernel.Mesh, error) {
	start := time.Now()
	backend := k.Name()

	m, err := tessellate(ctx, in, k)
	if err != nil {
		instrumentTessellationError(backend, err)
		return nil, err
	}

	instrumentTessellation(backend, m.VertexCount(), start)
	logs.WithTag("backend", backend).
		WithTag("name", in.Name).
		WithTag("dims", in.Field.Dims.String()).
		WithTag("threshold", in.Threshold).
		WithTag("vertices", m.VertexCount()).
		WithTag("duration", time.Since(start).String()).
		Debug("tessellation done")
	return m, nil
}

func tessellate(ctx context.Context, in Input, k kernel.Mesher) (*kernel.Mesh, error) {
	if in.Field == nil {
		return nil, errors.New("tessellate: no field").
			WithType(ErrTypeInvalidInput)
	}
	if err := in.Field.Validate(); err != nil {
		return nil, errors.New("tessellate: invalid field").
			WithType(ErrTypeInvalidInput).
			Wrap(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.New("tessellate: canceled").
			WithType(ErrTypeCanceled).
			Wrap(err)
	}

	vertices, err := k.Triangulate(in.Field, in.Threshold, in.Geometry)
	if err != nil {
		return nil, errors.New("tessellate: meshing failed").
			WithType(ErrTypeMesh).
			WithTag("backend", k.Name()).
			Wrap(err)
	}
	if len(vertices) == 0 {
		m := kernel.NewMesh(nil, nil, nil)
		m.Name = in.Name
		return m, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.New("tessellate: canceled").
			WithType(ErrTypeCanceled).
			Wrap(err)
	}

	normals := make([]mcubes.Vertex, len(vertices))
	if err := mcubes.Normals(normals, vertices); err != nil {
		return nil, errors.New("tessellate: normal estimation failed").
			WithType(ErrTypeNormals).
			WithTag("backend", k.Name()).
			Wrap(err)
	}

	// Colors are computed from the raw normals; only the sign of each
	// component matters for neighbor selection.
	colors := make([]mcubes.Color, len(vertices))
	r := colorRange(in)
	if err := mcubes.MapColors(colors, in.Field, in.Geometry, vertices, normals, r); err != nil {
		return nil, errors.New("tessellate: color mapping failed").
			WithType(ErrTypeColors).
			WithTag("min", r.Min).
			WithTag("max", r.Max).
			Wrap(err)
	}

	if in.Normalize {
		mcubes.Normalize(normals)
	}

	m := kernel.NewMesh(vertices, normals, colors)
	m.Name = in.Name
	return m, nil
}

// colorRange returns the requested range or one spanning the field. A
// field without spread gets a unit-wide range starting at its value.
func colorRange(in Input) mcubes.ColorRange {
	if in.Range != nil {
		return *in.Range
	}
	min, max, ok := in.Field.MinMax()
	if !ok {
		return mcubes.ColorRange{Min: 0, Max: 1}
	}
	if min == max {
		max = min + 1
	}
	return mcubes.ColorRange{Min: min, Max: max}
}
