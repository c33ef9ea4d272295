package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/isomesh/pkg/export"
	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/kernel/native"
	"github.com/chazu/isomesh/pkg/kernel/sdfx"
	"github.com/chazu/isomesh/pkg/mcubes"
	"github.com/chazu/isomesh/pkg/tessellate"
	"github.com/chazu/isomesh/pkg/volume"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/encoding/json"
)

// The isomesh version number. Set at build.
var version = "v0.1.0"

// Error types reported by the command.
const (
	errTypeConfig = "config_error"
	errTypeInput  = "input_error"
	errTypeScript = "script_error"
)

// Keeps the config field names readable by the cli package under
// obfuscation.
var _ = reflect.TypeOf(config{})

type config struct {
	Script      string `cli:"" env:"ISOMESH_SCRIPT"       help:"Scene script to evaluate."`
	Volume      string `cli:"" env:"ISOMESH_VOLUME"       help:"Scalar volume to mesh instead of a script (.json or .raw)."`
	Dims        string `cli:"" env:"ISOMESH_DIMS"         help:"Lattice dimensions of a raw volume, as XxYxZ."`
	Threshold   string `cli:"" env:"ISOMESH_THRESHOLD"    help:"Iso threshold applied to a volume."`
	Output      string `cli:"" env:"ISOMESH_OUTPUT"       help:"Output file."`
	Format      string `cli:"" env:"ISOMESH_FORMAT"       help:"Output format (glb|gltf|stl|json). Defaults to the output extension."`
	Backend     string `cli:"" env:"ISOMESH_BACKEND"      help:"Marching cubes backend (native|sdfx)."`
	Workers     int    `cli:"" env:"ISOMESH_WORKERS"      help:"Native backend workers. 0 uses every CPU."`
	LogLevel    string `cli:"" env:"ISOMESH_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool   `cli:"" env:"ISOMESH_LOG_INDENT"   help:"Indent logs."`
	MetricsFile string `cli:"" env:"ISOMESH_METRICS_FILE" help:"Write tessellation metrics to this file in the Prometheus text format."`
	Version     bool   `cli:"" env:"-"                    help:"Show version."`
	Help        bool   `cli:"" env:"-"                    help:"Show help."`
}

func main() {
	conf := config{
		Threshold: "0",
		Output:    "isosurface.glb",
		Backend:   "native",
		Workers:   1,
		LogLevel:  logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Extracts an isosurface from a scene script or a scalar volume and writes it as a mesh.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := run(ctx, conf); err != nil {
		logs.Fatal(err)
	}
}

func run(ctx context.Context, conf config) error {
	if err := validateConfig(conf); err != nil {
		return err
	}

	format, err := export.ParseFormat(conf.Format, conf.Output)
	if err != nil {
		return err
	}

	mesher, err := newMesher(conf.Backend, conf.Workers)
	if err != nil {
		return err
	}

	var m *kernel.Mesh
	if conf.Script != "" {
		m, err = meshScript(ctx, mesher, conf.Script)
	} else {
		m, err = meshVolume(ctx, mesher, conf)
	}
	if err != nil {
		return err
	}

	if err := export.WriteFile(conf.Output, format, m); err != nil {
		return err
	}

	logs.WithTag("output", conf.Output).
		WithTag("format", format).
		WithTag("backend", mesher.Name()).
		WithTag("vertices", m.VertexCount()).
		WithTag("triangles", m.TriangleCount()).
		Info("mesh written")

	if conf.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(conf.MetricsFile, prometheus.DefaultGatherer); err != nil {
			return errors.New("writing metrics failed").
				WithTag("file_name", conf.MetricsFile).
				Wrap(err)
		}
	}
	return nil
}

func validateConfig(conf config) error {
	if conf.Script == "" && conf.Volume == "" {
		return errors.New("a script or a volume is required").
			WithType(errTypeConfig)
	}
	if conf.Script != "" && conf.Volume != "" {
		return errors.New("script and volume are mutually exclusive").
			WithType(errTypeConfig).
			WithTag("script", conf.Script).
			WithTag("volume", conf.Volume)
	}
	if conf.Output == "" {
		return errors.New("an output file is required").
			WithType(errTypeConfig)
	}
	return nil
}

func newMesher(backend string, workers int) (kernel.Mesher, error) {
	switch backend {
	case "native":
		if workers == 1 {
			return native.New(), nil
		}
		return native.NewParallel(workers), nil

	case "sdfx":
		return sdfx.New(), nil

	default:
		return nil, errors.New("unknown backend").
			WithType(errTypeConfig).
			WithTag("backend", backend)
	}
}

// meshScript evaluates the script at path and tessellates its scene.
func meshScript(ctx context.Context, mesher kernel.Mesher, path string) (*kernel.Mesh, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading script failed").
			WithType(errTypeInput).
			WithTag("file_name", path).
			Wrap(err)
	}

	app := NewAppWithMesher(mesher)
	m, result := app.evaluate(ctx, meshName(path), string(source))

	for _, w := range result.Warnings {
		logs.WithTag("file_name", path).
			WithTag("line", w.Line).
			Warn(w.Message)
	}

	if len(result.Errors) > 0 {
		e := result.Errors[0]
		return nil, errors.New(e.Message).
			WithType(errTypeScript).
			WithTag("file_name", path).
			WithTag("line", e.Line).
			WithTag("col", e.Col).
			WithTag("errors", len(result.Errors))
	}

	if m == nil {
		return nil, errors.New("script defines no field").
			WithType(errTypeScript).
			WithTag("file_name", path)
	}
	return m, nil
}

// meshVolume reads the volume file named in conf and tessellates it on
// unit cells at the origin.
func meshVolume(ctx context.Context, mesher kernel.Mesher, conf config) (*kernel.Mesh, error) {
	threshold, err := strconv.ParseFloat(conf.Threshold, 32)
	if err != nil {
		return nil, errors.New("invalid threshold").
			WithType(errTypeConfig).
			WithTag("threshold", conf.Threshold).
			Wrap(err)
	}

	f, err := readVolume(conf.Volume, conf.Dims)
	if err != nil {
		return nil, err
	}

	return tessellate.Tessellate(ctx, tessellate.Input{
		Name:      meshName(conf.Volume),
		Field:     f,
		Threshold: float32(threshold),
		Geometry:  mcubes.DefaultGeometry(),
	}, mesher)
}

func readVolume(path, dims string) (*mcubes.Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New("opening volume failed").
			WithType(errTypeInput).
			WithTag("file_name", path).
			Wrap(err)
	}
	defer file.Close()

	var f *mcubes.Field
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		f, err = volume.ReadJSON(file)

	case ".raw":
		d, derr := parseDims(dims)
		if derr != nil {
			return nil, derr
		}
		f, err = volume.ReadRaw(file, d)

	default:
		return nil, errors.New("unknown volume format").
			WithType(errTypeInput).
			WithTag("file_name", path).
			WithTag("extension", ext)
	}
	if err != nil {
		return nil, errors.New("reading volume failed").
			WithType(errTypeInput).
			WithTag("file_name", path).
			Wrap(err)
	}
	return f, nil
}

// parseDims parses lattice dimensions written as XxYxZ.
func parseDims(s string) (mcubes.Dims, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return mcubes.Dims{}, errors.New("dims must be written as XxYxZ").
			WithType(errTypeConfig).
			WithTag("dims", s)
	}

	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return mcubes.Dims{}, errors.New("invalid dims").
				WithType(errTypeConfig).
				WithTag("dims", s).
				Wrap(err)
		}
		n[i] = v
	}

	d := mcubes.Dims{X: n[0], Y: n[1], Z: n[2]}
	if err := d.Validate(); err != nil {
		return mcubes.Dims{}, errors.New("invalid dims").
			WithType(errTypeConfig).
			WithTag("dims", s).
			Wrap(err)
	}
	return d, nil
}

func meshName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
