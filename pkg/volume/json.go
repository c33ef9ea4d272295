package volume

import (
	"io"

	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// ReadJSON decodes a field stored as nested arrays indexed [x][y][z]. Every
// row must have the same length.
func ReadJSON(r io.Reader) (*mcubes.Field, error) {
	var object [][][]float32
	dec := json.NewDecoder(r)
	if err := dec.Decode(&object); err != nil {
		return nil, errors.Wrap(err, "read json volume")
	}

	dims := mcubes.Dims{X: len(object)}
	if dims.X > 0 {
		dims.Y = len(object[0])
		if dims.Y > 0 {
			dims.Z = len(object[0][0])
		}
	}
	if err := dims.Validate(); err != nil {
		return nil, errors.Wrap(err, "read json volume")
	}

	data := make([]float32, 0, dims.Len())
	for x, plane := range object {
		if len(plane) != dims.Y {
			return nil, errors.Errorf("read json volume: plane %d has %d rows, want %d", x, len(plane), dims.Y)
		}
		for y, row := range plane {
			if len(row) != dims.Z {
				return nil, errors.Errorf("read json volume: row %d,%d has %d samples, want %d", x, y, len(row), dims.Z)
			}
			data = append(data, row...)
		}
	}
	return mcubes.NewField(dims, data)
}

// WriteJSON encodes f in the layout ReadJSON accepts.
func WriteJSON(w io.Writer, f *mcubes.Field) error {
	if err := f.Validate(); err != nil {
		return errors.Wrap(err, "write json volume")
	}
	object := make([][][]float32, f.X)
	for x := range object {
		object[x] = make([][]float32, f.Y)
		for y := range object[x] {
			start := f.Index(x, y, 0)
			object[x][y] = f.Data[start : start+f.Z]
		}
	}
	return errors.Wrap(json.NewEncoder(w).Encode(object), "write json volume")
}
