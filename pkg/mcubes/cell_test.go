package mcubes

import "testing"

func TestTriangulateCell(t *testing.T) {
	var out [MaxCellVertices]Vertex
	n := TriangulateCell(1, &out)
	if n != 3 {
		t.Fatalf("TriangulateCell(1) = %d vertices, want 3", n)
	}
	want := []Vertex{{0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5}}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, out[i], want[i])
		}
	}

	if n := TriangulateCell(0, &out); n != 0 {
		t.Errorf("TriangulateCell(0) = %d vertices, want 0", n)
	}
	if n := TriangulateCell(255, &out); n != 0 {
		t.Errorf("TriangulateCell(255) = %d vertices, want 0", n)
	}
}

func TestTriangulateCellDoesNotAliasTable(t *testing.T) {
	var out [MaxCellVertices]Vertex
	n := TriangulateCell(1, &out)
	scaleVertices(out[:n], Vertex{10, 10, 10})
	if got := EdgeMidpoint(0); got != (Vertex{0.5, 0, 0}) {
		t.Fatalf("edge midpoint changed to %v", got)
	}
}

func TestScaleThenTranslate(t *testing.T) {
	vertices := []Vertex{{1, 1, 1}, {0.5, 0, 1}, {0, 0, 0}}
	scaleVertices(vertices, Vertex{0.5, 1, 4})
	translateVertices(vertices, Vertex{2, 1, 4})
	want := []Vertex{{2.5, 2, 8}, {2.25, 1, 8}, {2, 1, 4}}
	for i := range want {
		if vertices[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, vertices[i], want[i])
		}
	}
}
