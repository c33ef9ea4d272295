package volume

import (
	"encoding/binary"
	"io"

	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/pkg/errors"
)

// rawChunk is the number of samples ReadRaw decodes at a time. Memory
// grows with the samples actually read, not with the requested dims.
const rawChunk = 1 << 16

// ReadRaw reads dims.Len() little-endian float32 samples in field order.
func ReadRaw(r io.Reader, dims mcubes.Dims) (*mcubes.Field, error) {
	if err := dims.Validate(); err != nil {
		return nil, errors.Wrap(err, "read raw volume")
	}

	n := dims.Len()
	data := make([]float32, 0, min(n, rawChunk))
	chunk := make([]float32, min(n, rawChunk))
	for len(data) < n {
		c := chunk[:min(n-len(data), rawChunk)]
		if err := binary.Read(r, binary.LittleEndian, c); err != nil {
			return nil, errors.Wrapf(err, "read raw volume %s: sample %d of %d", dims, len(data), n)
		}
		data = append(data, c...)
	}
	return mcubes.NewField(dims, data)
}

// WriteRaw writes the samples of f as little-endian float32.
func WriteRaw(w io.Writer, f *mcubes.Field) error {
	if err := f.Validate(); err != nil {
		return errors.Wrap(err, "write raw volume")
	}
	return errors.Wrap(binary.Write(w, binary.LittleEndian, f.Data), "write raw volume")
}
