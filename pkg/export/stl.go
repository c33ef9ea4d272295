package export

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangles converts m into sdfx triangles, following the index buffer.
func Triangles(m *kernel.Mesh) ([]*sdf.Triangle3, error) {
	if err := checkMesh(m); err != nil {
		return nil, err
	}

	vertex := func(i uint32) v3.Vec {
		v := m.Vertex(int(i))
		return v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	}

	triangles := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		triangles = append(triangles, &sdf.Triangle3{
			vertex(m.Indices[i]),
			vertex(m.Indices[i+1]),
			vertex(m.Indices[i+2]),
		})
	}
	return triangles, nil
}

// WriteSTL saves m as a binary STL file. STL has no per-vertex normals or
// colors; readers derive facet normals from the winding.
func WriteSTL(path string, m *kernel.Mesh) error {
	triangles, err := Triangles(m)
	if err != nil {
		return err
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return errors.New("writing stl failed").
			WithType(ErrTypeWrite).
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
