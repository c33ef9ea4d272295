package export

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/qmuntal/gltf"
)

const (
	gltfVersion   = "2.0"
	dataURIPrefix = "data:application/octet-stream;base64,"
)

// WriteGLTF encodes m as a glTF document holding one mesh with a single
// triangle primitive. glb selects the binary container; otherwise the
// buffer is embedded in the JSON as a data URI.
//
// glTF requires unit normals and colors in [0, 1], so both are fixed up
// here and only here: normals are normalized, falling back to +Z for
// degenerate triangles, and colors are clamped.
func WriteGLTF(w io.Writer, m *kernel.Mesh, glb bool) error {
	doc, err := BuildGLTF(m)
	if err != nil {
		return err
	}
	if !glb {
		buffer := doc.Buffers[0]
		buffer.URI = dataURIPrefix + base64.StdEncoding.EncodeToString(buffer.Data)
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = glb
	if err := enc.Encode(doc); err != nil {
		return writeErr("gltf", err)
	}
	return nil
}

// BuildGLTF converts m into a glTF document.
func BuildGLTF(m *kernel.Mesh) (*gltf.Document, error) {
	if err := checkMesh(m); err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		return nil, errors.New("gltf cannot hold an empty mesh").
			WithType(ErrTypeEmptyMesh).
			WithTag("name", m.Name)
	}

	doc := &gltf.Document{}
	doc.Asset.Version = gltfVersion
	doc.Asset.Generator = "isomesh"
	sceneIndex := uint32(0)
	doc.Scene = &sceneIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{Nodes: []uint32{0}})

	meshIndex := uint32(0)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name, Mesh: &meshIndex})

	buffer := &gltf.Buffer{}
	doc.Buffers = append(doc.Buffers, buffer)

	count := uint32(m.VertexCount())
	prim := &gltf.Primitive{
		Attributes: make(gltf.Attribute),
		Mode:       gltf.PrimitiveTriangles,
	}

	// POSITION
	min, max := m.BoundingBox()
	posacc := &gltf.Accessor{
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         count,
		Min:           min[:],
		Max:           max[:],
	}
	prim.Attributes["POSITION"] = addAccessor(doc, buffer, m.Vertices, posacc)

	// NORMAL
	if len(m.Normals) > 0 {
		nlacc := &gltf.Accessor{
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         count,
		}
		prim.Attributes["NORMAL"] = addAccessor(doc, buffer, unitNormals(m.Normals), nlacc)
	}

	// COLOR_0
	if len(m.Colors) > 0 {
		coloracc := &gltf.Accessor{
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         count,
		}
		prim.Attributes["COLOR_0"] = addAccessor(doc, buffer, clampColors(m.Colors), coloracc)
	}

	// indices
	if len(m.Indices) > 0 {
		indexacc := &gltf.Accessor{
			ComponentType: gltf.ComponentUint,
			Type:          gltf.AccessorScalar,
			Count:         uint32(len(m.Indices)),
		}
		index := addAccessor(doc, buffer, m.Indices, indexacc)
		prim.Indices = &index
	}

	materialIndex := uint32(0)
	prim.Material = &materialIndex
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "isosurface",
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
		},
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       m.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	return doc, nil
}

// addAccessor appends data to the buffer in its own buffer view and returns
// the index of acc, which is pointed at that view.
func addAccessor(doc *gltf.Document, buffer *gltf.Buffer, data any, acc *gltf.Accessor) uint32 {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, data)

	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(buf.Len()),
	}
	buffer.Data = append(buffer.Data, buf.Bytes()...)
	buffer.ByteLength += uint32(buf.Len())

	viewIndex := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, view)

	acc.BufferView = &viewIndex
	doc.Accessors = append(doc.Accessors, acc)
	return uint32(len(doc.Accessors) - 1)
}

// unitNormals returns normalized copies of flat normals. Zero normals
// become +Z.
func unitNormals(normals []float32) []float32 {
	out := make([]float32, len(normals))
	for i := 0; i+2 < len(normals); i += 3 {
		n := mcubes.Vertex{normals[i], normals[i+1], normals[i+2]}
		if n.Length() == 0 {
			n = mcubes.Vertex{0, 0, 1}
		} else {
			n.Normalize()
		}
		copy(out[i:i+3], n[:])
	}
	return out
}

// clampColors returns copies of flat colors clamped to [0, 1].
func clampColors(colors []float32) []float32 {
	out := make([]float32, len(colors))
	for i, c := range colors {
		out[i] = min(max(c, 0), 1)
	}
	return out
}
