// Package mcubes extracts isosurfaces from regular 3-D scalar fields with
// the marching cubes algorithm.
//
// A field is sampled on an X×Y×Z lattice. Every interior cell is classified
// against a threshold into one of 256 configurations, and the configuration
// selects a fixed triangulation whose vertices sit at the midpoints of the
// crossed cube edges. The package also derives flat face normals and a
// red/green color gradient from the field values next to each vertex.
//
// All functions are pure: they write into caller-owned buffers, keep no
// state between calls and never log.
package mcubes
