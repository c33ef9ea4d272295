// Package export writes meshes to files: glTF 2.0 (JSON or binary), STL and
// a plain JSON dump of the flat mesh arrays.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/isomesh/pkg/kernel"
)

// Error types reported by the writers.
const (
	ErrTypeEmptyMesh     = "empty_mesh"
	ErrTypeInvalidMesh   = "invalid_mesh"
	ErrTypeUnknownFormat = "unknown_format"
	ErrTypeWrite         = "write_failed"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
	FormatSTL  Format = "stl"
	FormatJSON Format = "json"
)

// ParseFormat returns the format named s, or the one matching the
// extension of path when s is empty.
func ParseFormat(s, path string) (Format, error) {
	if s == "" {
		s = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch f := Format(strings.ToLower(s)); f {
	case FormatGLB, FormatGLTF, FormatSTL, FormatJSON:
		return f, nil
	}
	return "", errors.New("unknown output format").
		WithType(ErrTypeUnknownFormat).
		WithTag("format", s).
		WithTag("path", path)
}

// WriteFile writes m to path in format f.
func WriteFile(path string, f Format, m *kernel.Mesh) error {
	if f == FormatSTL {
		return WriteSTL(path, m)
	}

	if err := checkMesh(m); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.New("creating output file failed").
			WithType(ErrTypeWrite).
			WithTag("path", path).
			Wrap(err)
	}
	defer file.Close()

	switch f {
	case FormatGLB:
		err = WriteGLTF(file, m, true)
	case FormatGLTF:
		err = WriteGLTF(file, m, false)
	case FormatJSON:
		err = WriteJSON(file, m, true)
	default:
		err = errors.New("unknown output format").
			WithType(ErrTypeUnknownFormat).
			WithTag("format", string(f))
	}
	if err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return errors.New("closing output file failed").
			WithType(ErrTypeWrite).
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}

// checkMesh verifies that the flat arrays agree with each other.
func checkMesh(m *kernel.Mesh) error {
	if m == nil {
		return errors.New("nil mesh").WithType(ErrTypeInvalidMesh)
	}
	n := len(m.Vertices)
	if n%9 != 0 {
		return errors.New("vertex array is not made of whole triangles").
			WithType(ErrTypeInvalidMesh).
			WithTag("floats", n)
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return errors.New("normal and vertex arrays differ in length").
			WithType(ErrTypeInvalidMesh).
			WithTag("vertices", n).
			WithTag("normals", len(m.Normals))
	}
	if len(m.Colors) != 0 && len(m.Colors) != n {
		return errors.New("color and vertex arrays differ in length").
			WithType(ErrTypeInvalidMesh).
			WithTag("vertices", n).
			WithTag("colors", len(m.Colors))
	}
	for _, idx := range m.Indices {
		if int(idx) >= n/3 {
			return errors.New("index out of range").
				WithType(ErrTypeInvalidMesh).
				WithTag("index", idx).
				WithTag("vertices", n/3)
		}
	}
	return nil
}

// writeErr wraps a writer failure.
func writeErr(format string, err error) error {
	return errors.New("writing mesh failed").
		WithType(ErrTypeWrite).
		WithTag("format", format).
		Wrap(err)
}
