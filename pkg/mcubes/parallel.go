package mcubes

import (
	"fmt"
	"runtime"
	"sync"
)

// MarchParallel produces exactly the output of March using several
// goroutines. Each cell's vertex count is looked up first, the counts are
// prefix-summed into write offsets, and the cells are then triangulated
// concurrently into disjoint ranges of dst.
//
// workers <= 0 uses GOMAXPROCS.
func MarchParallel(dst []Vertex, f *Field, threshold float32, g Geometry, workers int) (int, error) {
	if err := checkMarch(dst, f, threshold); err != nil {
		return 0, err
	}
	out := marchSlabs(f, threshold, g, workers, func(int) []Vertex { return dst })
	return len(out), nil
}

// MarchExact is MarchParallel with an output buffer allocated after the
// count pass, so it holds exactly the emitted vertices instead of
// MaxVertexCount(f.Dims) of them.
func MarchExact(f *Field, threshold float32, g Geometry, workers int) ([]Vertex, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !finite(threshold) {
		return nil, fmt.Errorf("%v: %w", threshold, ErrThreshold)
	}
	out := marchSlabs(f, threshold, g, workers, func(n int) []Vertex {
		return make([]Vertex, n)
	})
	return out[:len(out):len(out)], nil
}

// marchSlabs counts, prefix-sums and triangulates f. alloc receives the
// total vertex count and returns the buffer to fill; the filled prefix is
// returned.
func marchSlabs(f *Field, threshold float32, g Geometry, workers int, alloc func(n int) []Vertex) []Vertex {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Slabs are one x column of cells; offsets[i] is where slab i starts.
	slabs := f.X - 1
	offsets := make([]int, slabs+1)
	if workers > slabs {
		workers = slabs
	}

	var wg sync.WaitGroup
	forEachChunk(slabs, workers, &wg, func(x int) {
		offsets[x+1] = countSlab(f, threshold, x)
	})
	wg.Wait()

	for x := 0; x < slabs; x++ {
		offsets[x+1] += offsets[x]
	}

	dst := alloc(offsets[slabs])
	forEachChunk(slabs, workers, &wg, func(x int) {
		out := dst[offsets[x]:offsets[x+1]]
		n := 0
		for y := 0; y < f.Y-1; y++ {
			for z := 0; z < f.Z-1; z++ {
				n += marchCell(out[n:], f, threshold, g, x, y, z)
			}
		}
	})
	wg.Wait()

	return dst[:offsets[slabs]]
}

func countSlab(f *Field, threshold float32, x int) int {
	n := 0
	for y := 0; y < f.Y-1; y++ {
		for z := 0; z < f.Z-1; z++ {
			n += VertexCount(Classify(CellCorners(f, x, y, z), threshold))
		}
	}
	return n
}

// forEachChunk splits [0, n) into contiguous chunks, one goroutine each.
func forEachChunk(n, workers int, wg *sync.WaitGroup, fn func(i int)) {
	size := (n + workers - 1) / workers
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
}
