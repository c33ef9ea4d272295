package mcubes

import (
	"fmt"

	"github.com/flywave/go3d/vec3"
)

// Normals writes one face normal per vertex into dst. For the triangle
// (v0, v1, v2) the normal is (v1-v0) × (v2-v0) and all three vertices get
// the same value. The vector is left unnormalized: its length is twice the
// triangle's area. Use Normalize for unit vectors.
func Normals(dst, vertices []Vertex) error {
	if len(vertices)%3 != 0 {
		return fmt.Errorf("%d vertices: %w", len(vertices), ErrVertexCount)
	}
	if len(dst) < len(vertices) {
		return fmt.Errorf("have %d normals, need %d: %w", len(dst), len(vertices), ErrBufferTooSmall)
	}

	for i := 0; i < len(vertices); i += 3 {
		n := FaceNormal(vertices[i], vertices[i+1], vertices[i+2])
		dst[i] = n
		dst[i+1] = n
		dst[i+2] = n
	}
	return nil
}

// FaceNormal returns (v1-v0) × (v2-v0).
func FaceNormal(v0, v1, v2 Vertex) Vertex {
	a := vec3.Sub(&v1, &v0)
	b := vec3.Sub(&v2, &v0)
	return vec3.Cross(&a, &b)
}

// Normalize scales every non-zero normal to unit length in place. Zero
// normals from degenerate triangles are left as they are.
func Normalize(normals []Vertex) {
	for i := range normals {
		if normals[i].Length() == 0 {
			continue
		}
		normals[i].Normalize()
	}
}
