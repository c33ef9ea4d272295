package mcubes

// TriangulateCell writes the unit-cube vertices of a configuration into out
// and returns how many were written.
func TriangulateCell(config uint8, out *[MaxCellVertices]Vertex) int {
	row := &edgeTable[config]
	n := 0
	for _, e := range row {
		if e == EdgeSentinel {
			break
		}
		out[n] = edgeMidpoints[e]
		n++
	}
	return n
}

func scaleVertices(vertices []Vertex, scale Vertex) {
	for i := range vertices {
		vertices[i][0] *= scale[0]
		vertices[i][1] *= scale[1]
		vertices[i][2] *= scale[2]
	}
}

func translateVertices(vertices []Vertex, delta Vertex) {
	for i := range vertices {
		vertices[i][0] += delta[0]
		vertices[i][1] += delta[1]
		vertices[i][2] += delta[2]
	}
}

// marchCell triangulates cell (x, y, z) into world space. The local vertices
// are scaled to the cell size first and translated to the cell origin second.
func marchCell(dst []Vertex, f *Field, threshold float32, g Geometry, x, y, z int) int {
	var local [MaxCellVertices]Vertex
	config := Classify(CellCorners(f, x, y, z), threshold)
	n := TriangulateCell(config, &local)
	if n == 0 {
		return 0
	}
	scaleVertices(local[:n], g.CellSize)
	translateVertices(local[:n], g.cellOrigin(x, y, z))
	return copy(dst, local[:n])
}
