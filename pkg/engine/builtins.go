package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/isomesh/pkg/kernel/sdfx"
	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/chazu/isomesh/pkg/volume"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: color-range -> color_range
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a signed distance function so it can be passed between
// shape builtins and consumed by `sample`.
type sexpShape struct {
	sdf  sdf.SDF3
	desc string
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return "(" + s.desc + ")"
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpField is returned by `sample` and `volume`.
type sexpField struct {
	dims mcubes.Dims
}

func (f *sexpField) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(field %s)", f.dims)
}
func (f *sexpField) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloat32 extracts a number that must fit a float32 sample.
func toFloat32(s zygo.Sexp) (float32, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
		return 0, fmt.Errorf("%g overflows float32", f)
	}
	return float32(f), nil
}

// toBool extracts a boolean. A bare keyword flag (nil value) counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVertex extracts a vec3 as a float32 vertex.
func toVertex(s zygo.Sexp) (mcubes.Vertex, error) {
	v, err := toVec3(s)
	if err != nil {
		return mcubes.Vertex{}, err
	}
	return mcubes.Vertex{float32(v.X), float32(v.Y), float32(v.Z)}, nil
}

// toDims extracts grid dimensions from a vec3 of whole numbers.
func toDims(s zygo.Sexp) (mcubes.Dims, error) {
	v, err := toVec3(s)
	if err != nil {
		return mcubes.Dims{}, err
	}
	var out [3]int
	for i, c := range [3]float64{v.X, v.Y, v.Z} {
		if c != math.Trunc(c) || c > math.MaxInt32 {
			return mcubes.Dims{}, fmt.Errorf("dimension %g is not a whole number", c)
		}
		out[i] = int(c)
	}
	dims := mcubes.Dims{X: out[0], Y: out[1], Z: out[2]}
	if err := dims.Validate(); err != nil {
		return mcubes.Dims{}, err
	}
	return dims, nil
}

// toShape extracts an SDF from a sexpShape.
func toShape(s zygo.Sexp) (*sexpShape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloat32s converts a list or array of numbers.
func toFloat32s(s zygo.Sexp) ([]float32, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(items))
	for i, item := range items {
		f, err := toFloat32(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Scene accumulation
// ---------------------------------------------------------------------------

// defaultMarginRatio is the fraction of a shape's largest extent left free
// around it when `sample` fits the lattice to the shape.
const defaultMarginRatio = 0.1

// sceneBuilder collects the state a script sets through the builtins.
type sceneBuilder struct {
	scene      *Scene
	hasSurface bool
}

func newSceneBuilder() *sceneBuilder {
	return &sceneBuilder{scene: &Scene{}}
}

func (b *sceneBuilder) setField(origin string, f *mcubes.Field, g mcubes.Geometry) error {
	if b.scene.Field != nil {
		return fmt.Errorf("%s: field already defined by %s; a scene holds exactly one field", origin, b.scene.Origin)
	}
	b.scene.Field = f
	b.scene.Geometry = g
	b.scene.Origin = origin
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins record the scene into b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *sceneBuilder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere 10)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius")
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		s, err := sdfx.Sphere(r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{sdf: s, desc: fmt.Sprintf("sphere %g", r)}, nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 30)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires exactly 3 dimensions, got %d", len(args))
		}
		var size [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %s: %w", axis, err)
			}
			size[i] = f
		}
		s, err := sdfx.Box(size[0], size[1], size[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{sdf: s, desc: fmt.Sprintf("box %g %g %g", size[0], size[1], size[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder 40 10)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires a height and a radius")
		}
		h, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		s, err := sdfx.Cylinder(h, r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{sdf: s, desc: fmt.Sprintf("cylinder %g %g", h, r)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union requires at least 2 shapes, got %d", len(args))
		}
		shapes := make([]sdf.SDF3, len(args))
		for i, arg := range args {
			s, err := toShape(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: shape %d: %w", i, err)
			}
			shapes[i] = s.sdf
		}
		return &sexpShape{sdf: sdfx.Union(shapes...), desc: fmt.Sprintf("union of %d", len(shapes))}, nil
	})

	// -----------------------------------------------------------------------
	// (difference a b) and (intersection a b)
	// -----------------------------------------------------------------------
	booleans := map[string]func(a, b sdf.SDF3) sdf.SDF3{
		"difference":   sdfx.Difference,
		"intersection": sdfx.Intersection,
	}
	for op, fn := range booleans {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 shapes, got %d", op, len(args))
			}
			a, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: first: %w", op, err)
			}
			c, err := toShape(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: second: %w", op, err)
			}
			return &sexpShape{sdf: fn(a.sdf, c.sdf), desc: op + " " + a.desc + " " + c.desc}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate shape (vec3 1 0 0)) and (rotate shape (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transforms := map[string]func(s sdf.SDF3, x, y, z float64) sdf.SDF3{
		"translate": sdfx.Translate,
		"rotate":    sdfx.Rotate,
	}
	for op, fn := range transforms {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape and a vec3", op)
			}
			s, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: shape: %w", op, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpShape{
				sdf:  fn(s.sdf, v.X, v.Y, v.Z),
				desc: fmt.Sprintf("%s %s %g %g %g", op, s.desc, v.X, v.Y, v.Z),
			}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (sample shape :dims (vec3 32 32 32) :cell (vec3 1 1 1) :origin (vec3 0 0 0))
	// (sample shape :dims (vec3 32 32 32) :margin 2)
	//
	// Without :cell the lattice is fitted to the shape's bounding box.
	// -----------------------------------------------------------------------
	env.AddFunction("sample", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("sample requires a shape as first argument")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: shape: %w", err)
		}

		v, ok := pa.kw["dims"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sample: :dims is required")
		}
		dims, err := toDims(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: dims: %w", err)
		}

		var g mcubes.Geometry
		if v, ok := pa.kw["cell"]; ok {
			if g.CellSize, err = toVertex(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sample: cell: %w", err)
			}
			if v, ok := pa.kw["origin"]; ok {
				if g.Origin, err = toVertex(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("sample: origin: %w", err)
				}
			}
		} else {
			size := s.sdf.BoundingBox().Size()
			margin := defaultMarginRatio * math.Max(size.X, math.Max(size.Y, size.Z))
			if v, ok := pa.kw["margin"]; ok {
				if margin, err = toFloat64(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("sample: margin: %w", err)
				}
			}
			if g, err = volume.FitGeometry(s.sdf, dims, margin); err != nil {
				return zygo.SexpNull, fmt.Errorf("sample: %w", err)
			}
		}

		f, err := volume.SampleSDF(s.sdf, dims, g)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: %w", err)
		}
		if err := b.setField("sample", f, g); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{dims: dims}, nil
	})

	// -----------------------------------------------------------------------
	// (volume :dims (vec3 2 2 2) :values [0 1 1 1 1 1 1 1] :cell (vec3 1 1 1)
	//         :origin (vec3 0 0 0))
	//
	// Values are listed with z varying fastest, then y, then x.
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		v, ok := pa.kw["dims"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("volume: :dims is required")
		}
		dims, err := toDims(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: dims: %w", err)
		}

		v, ok = pa.kw["values"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("volume: :values is required")
		}
		values, err := toFloat32s(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: values: %w", err)
		}

		g := mcubes.DefaultGeometry()
		if v, ok := pa.kw["cell"]; ok {
			if g.CellSize, err = toVertex(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: cell: %w", err)
			}
		}
		if v, ok := pa.kw["origin"]; ok {
			if g.Origin, err = toVertex(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: origin: %w", err)
			}
		}

		f, err := mcubes.NewField(dims, values)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		if err := b.setField("volume", f, g); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{dims: dims}, nil
	})

	// -----------------------------------------------------------------------
	// (surface :threshold 0.5 :range [0 1] :normalize true :clamp true)
	// -----------------------------------------------------------------------
	env.AddFunction("surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.hasSurface {
			return zygo.SexpNull, fmt.Errorf("surface: already set; a scene holds one surface")
		}
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("surface takes keyword arguments only")
		}

		if v, ok := pa.kw["threshold"]; ok {
			t, err := toFloat32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: threshold: %w", err)
			}
			if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
				return zygo.SexpNull, fmt.Errorf("surface: threshold: %w", mcubes.ErrThreshold)
			}
			b.scene.Threshold = t
		}

		if v, ok := pa.kw["range"]; ok {
			bounds, err := toFloat32s(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: range: %w", err)
			}
			if len(bounds) != 2 {
				return zygo.SexpNull, fmt.Errorf("surface: range: expected [min max], got %d values", len(bounds))
			}
			if bounds[0] == bounds[1] {
				return zygo.SexpNull, fmt.Errorf("surface: range: %w", mcubes.ErrColorRange)
			}
			b.scene.Range = &mcubes.ColorRange{Min: bounds[0], Max: bounds[1]}
		}

		if v, ok := pa.kw["normalize"]; ok {
			n, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: normalize: %w", err)
			}
			b.scene.Normalize = n
		}

		if v, ok := pa.kw["clamp"]; ok {
			c, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: clamp: %w", err)
			}
			if c && b.scene.Range == nil {
				return zygo.SexpNull, fmt.Errorf("surface: clamp requires :range")
			}
			if b.scene.Range != nil {
				b.scene.Range.Clamp = c
			}
		}

		b.hasSurface = true
		return zygo.SexpNull, nil
	})
}
