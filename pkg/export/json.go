package export

import (
	"io"

	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/segmentio/encoding/json"
)

// WriteJSON encodes the flat mesh arrays as one JSON object.
func WriteJSON(w io.Writer, m *kernel.Mesh, indent bool) error {
	if err := checkMesh(m); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(m); err != nil {
		return writeErr("json", err)
	}
	return nil
}
