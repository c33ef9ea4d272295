package kernel

import "github.com/chazu/isomesh/pkg/mcubes"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices, normals and colors have 3 floats per
// vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Colors   []float32 `json:"colors"`   // [r0,g0,b0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which scene or backend produced it
}

// NewMesh flattens index-aligned vertex, normal and color sequences into a
// Mesh. normals and colors may be nil. Triangles are not shared, so the
// indices simply count up.
func NewMesh(vertices, normals []mcubes.Vertex, colors []mcubes.Color) *Mesh {
	m := &Mesh{
		Vertices: flatten(vertices),
		Normals:  flatten(normals),
		Colors:   flatten(colors),
		Indices:  make([]uint32, len(vertices)),
	}
	for i := range m.Indices {
		m.Indices[i] = uint32(i)
	}
	return m
}

func flatten(vs []mcubes.Vertex) []float32 {
	if vs == nil {
		return nil
	}
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) mcubes.Vertex {
	return mcubes.Vertex{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) mcubes.Vertex {
	return mcubes.Vertex{m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2]}
}

// Color returns the color of vertex i.
func (m *Mesh) Color(i int) mcubes.Color {
	return mcubes.Color{m.Colors[3*i], m.Colors[3*i+1], m.Colors[3*i+2]}
}

// BoundingBox returns the axis-aligned bounds of the vertices. Both are
// zero for an empty mesh.
func (m *Mesh) BoundingBox() (min, max [3]float32) {
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for axis := 0; axis < 3; axis++ {
			if i == 0 || v[axis] < min[axis] {
				min[axis] = v[axis]
			}
			if i == 0 || v[axis] > max[axis] {
				max[axis] = v[axis]
			}
		}
	}
	return min, max
}
