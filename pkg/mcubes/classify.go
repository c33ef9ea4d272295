package mcubes

// cornerOffsets lists the lattice offset of each cell corner. The order is
// the bit order the triangulation table was built for and must not change.
var cornerOffsets = [8][3]int{
	{0, 0, 0},
	{1, 0, 0},
	{1, 0, 1},
	{0, 0, 1},
	{0, 1, 0},
	{1, 1, 0},
	{1, 1, 1},
	{0, 1, 1},
}

// CellCorners gathers the 8 samples of cell (x, y, z) in corner order.
func CellCorners(f *Field, x, y, z int) [8]float32 {
	var corners [8]float32
	for i, o := range cornerOffsets {
		corners[i] = f.Data[f.Index(x+o[0], y+o[1], z+o[2])]
	}
	return corners
}

// Classify returns the configuration index of a cell: bit i is set when
// corner i is strictly below threshold. A sample equal to the threshold
// counts as above.
func Classify(corners [8]float32, threshold float32) uint8 {
	var config uint8
	for i, v := range corners {
		if v < threshold {
			config |= 1 << uint(i)
		}
	}
	return config
}
