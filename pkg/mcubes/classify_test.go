package mcubes

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		corners   [8]float32
		threshold float32
		want      uint8
	}{
		{"all above", [8]float32{1, 1, 1, 1, 1, 1, 1, 1}, 0.5, 0},
		{"all below", [8]float32{0, 0, 0, 0, 0, 0, 0, 0}, 0.5, 255},
		{"corner 0 below", [8]float32{0, 1, 1, 1, 1, 1, 1, 1}, 0.5, 1},
		{"corner 7 below", [8]float32{1, 1, 1, 1, 1, 1, 1, 0}, 0.5, 128},
		{"alternating", [8]float32{0, 1, 0, 1, 0, 1, 0, 1}, 0.5, 0x55},
		{"equal counts as above", [8]float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 0.5, 0},
		{"just below", [8]float32{0.4999, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 0.5, 1},
		{"negative threshold", [8]float32{-2, -1, 0, 1, -2, -1, 0, 1}, -1, 0x11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.corners, tt.threshold); got != tt.want {
				t.Errorf("Classify() = %d, want %d", got, tt.want)
			}
			if again := Classify(tt.corners, tt.threshold); again != tt.want {
				t.Errorf("second Classify() = %d, want %d", again, tt.want)
			}
		})
	}
}

func TestCellCornersOrder(t *testing.T) {
	dims := Dims{2, 2, 2}
	data := make([]float32, dims.Len())
	for i := range data {
		data[i] = float32(i)
	}
	f, err := NewField(dims, data)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	// index = z + 2y + 4x
	want := [8]float32{0, 4, 5, 1, 2, 6, 7, 3}
	if got := CellCorners(f, 0, 0, 0); got != want {
		t.Fatalf("CellCorners() = %v, want %v", got, want)
	}
}

func TestDimsIndexLayout(t *testing.T) {
	d := Dims{4, 3, 2}
	i := 0
	for x := 0; x < d.X; x++ {
		for y := 0; y < d.Y; y++ {
			for z := 0; z < d.Z; z++ {
				if got := d.Index(x, y, z); got != i {
					t.Fatalf("Index(%d, %d, %d) = %d, want %d", x, y, z, got, i)
				}
				i++
			}
		}
	}
}

func TestDimsValidate(t *testing.T) {
	tests := []struct {
		name string
		dims Dims
		want error
	}{
		{"smallest grid", Dims{2, 2, 2}, nil},
		{"large grid", Dims{1000, 1000, 1000}, nil},
		{"flat axis", Dims{2, 1, 2}, ErrDims},
		{"negative axis", Dims{-4, 4, 4}, ErrDims},
		{"vertex count overflows", Dims{1 << 21, 1 << 21, 1 << 21}, ErrDimsOverflow},
		{"sample count overflows", Dims{1 << 40, 1 << 40, 2}, ErrDimsOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dims.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
