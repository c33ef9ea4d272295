package main

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/isomesh/pkg/engine"
	"github.com/chazu/isomesh/pkg/kernel"
	"github.com/chazu/isomesh/pkg/kernel/native"
	"github.com/chazu/isomesh/pkg/tessellate"
)

// App turns scene scripts into isosurface meshes.
type App struct {
	engine *engine.Engine
	mesher kernel.Mesher
}

// MeshData is the JSON-serializable mesh format returned to callers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Colors   []float32 `json:"colors"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the sequential native mesher.
func NewApp() *App {
	return NewAppWithMesher(native.New())
}

// NewAppWithMesher creates a new App that meshes with m.
func NewAppWithMesher(m kernel.Mesher) *App {
	return &App{
		engine: engine.NewEngine(),
		mesher: m,
	}
}

// Evaluate takes a scene script and returns mesh data, errors and warnings.
func (a *App) Evaluate(source string) EvalResult {
	_, result := a.evaluate(context.Background(), "isosurface", source)
	return result
}

// evaluate runs the script and tessellates its scene. The mesh is nil when
// the result carries errors or the script defines no field.
func (a *App) evaluate(ctx context.Context, name, source string) (*kernel.Mesh, EvalResult) {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logs.Warn(errors.New("evaluating script failed").Wrap(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return nil, result
	}

	if scene.IsEmpty() {
		return nil, result
	}

	for _, w := range scene.Warnings() {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Message,
		})
	}

	m, err := tessellate.Tessellate(ctx, scene.Input(name), a.mesher)
	if err != nil {
		logs.Warn(errors.New("tessellation failed").
			WithTag("backend", a.mesher.Name()).
			Wrap(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return nil, result
	}

	if m.IsEmpty() {
		return m, result
	}

	result.Meshes = append(result.Meshes, MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Colors:   m.Colors,
		Indices:  m.Indices,
		Name:     m.Name,
	})
	return m, result
}
