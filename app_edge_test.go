package main

import (
	"strings"
	"testing"

	"github.com/chazu/isomesh/pkg/kernel/native"
	"github.com/chazu/isomesh/pkg/kernel/sdfx"
	"github.com/stretchr/testify/require"
)

const ballSource = `
(def ball (sphere 6))
(sample ball :dims (vec3 16 16 16))
(surface :range [-1 1])
`

func TestE2EEmptySourceExtended(t *testing.T) {
	for _, source := range []string{"", "   \n\t  \n"} {
		result := NewApp().Evaluate(source)

		require.Empty(t, result.Errors)
		require.Empty(t, result.Meshes)
		require.Empty(t, result.Warnings)

		// JSON serializes these as [] rather than null.
		require.NotNil(t, result.Meshes)
		require.NotNil(t, result.Errors)
		require.NotNil(t, result.Warnings)
	}
}

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	source := "(def s (sphere 2))\n(sample s :dims (vec3 8 8 8)"
	result := NewApp().Evaluate(source)

	require.NotEmpty(t, result.Errors)
	require.Empty(t, result.Meshes)
	require.NotEmpty(t, result.Errors[0].Message)
	t.Logf("syntax error: line=%d, col=%d, message=%q",
		result.Errors[0].Line, result.Errors[0].Col, result.Errors[0].Message)
}

func TestE2EScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{
			name:    "comments only",
			source:  ";; nothing to see here",
			message: "no field defined",
		},
		{
			name:    "no field",
			source:  `(def s (sphere 2))`,
			message: "no field defined",
		},
		{
			name: "two fields",
			source: `(def s (sphere 2))
(sample s :dims (vec3 4 4 4))
(sample s :dims (vec3 4 4 4))`,
			message: "already defined",
		},
		{
			name:    "dims too small",
			source:  `(sample (sphere 2) :dims (vec3 1 4 4))`,
			message: "dims",
		},
		{
			name:    "negative radius",
			source:  `(sample (sphere -2) :dims (vec3 4 4 4))`,
			message: "sphere",
		},
		{
			name:    "wrong value count",
			source:  `(volume :dims (vec3 2 2 2) :values [0 1 2])`,
			message: "volume",
		},
		{
			name:    "clamp without range",
			source:  `(volume :dims (vec3 2 2 2) :values [0 1 1 1 1 1 1 1]) (surface :clamp true)`,
			message: "clamp requires :range",
		},
		{
			name:    "undefined function",
			source:  `(undefined-func 1 2 3)`,
			message: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp().Evaluate(tt.source)
			require.NotEmpty(t, result.Errors)
			require.Empty(t, result.Meshes)
			require.True(t, strings.Contains(result.Errors[0].Message, tt.message),
				"message %q does not contain %q", result.Errors[0].Message, tt.message)
		})
	}
}

func TestE2EThresholdOutsideField(t *testing.T) {
	source := `
(volume :dims (vec3 2 2 2) :values [1 1 1 1 1 1 1 1])
(surface :threshold 0.5)
`
	result := NewApp().Evaluate(source)

	require.Empty(t, result.Errors)
	require.Empty(t, result.Meshes)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0].Message, "outside the sample range")
}

func TestE2EParallelMatchesSequential(t *testing.T) {
	want := NewApp().Evaluate(ballSource)
	require.Empty(t, want.Errors)
	require.Len(t, want.Meshes, 1)

	for _, workers := range []int{2, 3, 0} {
		got := NewAppWithMesher(native.NewParallel(workers)).Evaluate(ballSource)
		require.Empty(t, got.Errors)
		require.Equal(t, want.Meshes, got.Meshes, "workers=%d", workers)
	}
}

func TestE2ESdfxBackend(t *testing.T) {
	result := NewAppWithMesher(sdfx.New()).Evaluate(ballSource)

	require.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 1)

	m := result.Meshes[0]
	require.NotEmpty(t, m.Vertices)
	require.Zero(t, len(m.Vertices)%9)
	require.Len(t, m.Normals, len(m.Vertices))
	require.Len(t, m.Colors, len(m.Vertices))
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources on one App so the engine
	// has to recover cleanly between error and success states.
	app := NewApp()

	sources := []string{
		ballSource,
		`(sample (sphere 2)`,
		``,
		`(volume :dims (vec3 2 2 2) :values [0 1 1 1 1 1 1 1]) (surface :threshold 0.5)`,
		`(+ 1 2)`,
		`;; just a comment`,
		ballSource,
		`(undefined-func 1 2 3)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	result := app.Evaluate(ballSource)
	require.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 1)
}

func TestE2ELargeLattice(t *testing.T) {
	source := `
(def shape (difference (box 30 30 30) (translate (sphere 12) (vec3 15 15 15))))
(sample shape :dims (vec3 48 48 48) :margin 1)
`
	result := NewAppWithMesher(native.NewParallel(0)).Evaluate(source)

	require.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 1)
	require.NotEmpty(t, result.Meshes[0].Vertices)
}

func TestE2EKebabCaseAndArithmetic(t *testing.T) {
	source := `
(def half-size (/ 12 2))
(def big-ball (sphere (* half-size 1.5)))
(sample big-ball :dims (vec3 (+ 10 2) 12 12))
`
	result := NewApp().Evaluate(source)

	require.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 1)
}
