package thermal

import (
	"fmt"
	"math"
)

// Grid is the discretized build volume: a voxel occupancy field and a
// co-indexed temperature field, stored as flat slices in x-major order.
// Both fields always share the same extents; the grid is never resized
// after creation.
type Grid struct {
	NX, NY, NZ int

	occ  []bool
	temp []float64
}

// NewGrid allocates a grid covering the given physical dimensions (mm)
// at the given resolution (mm). Extents are floor(dim/res)+1 per axis.
// Every voxel starts as void at ambient temperature.
func NewGrid(dimX, dimY, dimZ, resolution, ambient float64) (*Grid, error) {
	if dimX <= 0 || dimY <= 0 || dimZ <= 0 {
		return nil, fmt.Errorf("%w: dimensions (%g, %g, %g)", ErrInvalidDimensions, dimX, dimY, dimZ)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %g", ErrInvalidDimensions, resolution)
	}

	nx := int(math.Floor(dimX/resolution)) + 1
	ny := int(math.Floor(dimY/resolution)) + 1
	nz := int(math.Floor(dimZ/resolution)) + 1

	g := &Grid{
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		occ:  make([]bool, nx*ny*nz),
		temp: make([]float64, nx*ny*nz),
	}
	for i := range g.temp {
		g.temp[i] = ambient
	}
	return g, nil
}

func (g *Grid) index(i, j, k int) int {
	return (i*g.NY+j)*g.NZ + k
}

// Occupied reports whether the voxel at (i, j, k) holds material.
func (g *Grid) Occupied(i, j, k int) bool {
	return g.occ[g.index(i, j, k)]
}

// Temp returns the temperature of the voxel at (i, j, k).
func (g *Grid) Temp(i, j, k int) float64 {
	return g.temp[g.index(i, j, k)]
}

// MaterialCount returns the number of occupied voxels.
func (g *Grid) MaterialCount() int {
	n := 0
	for _, o := range g.occ {
		if o {
			n++
		}
	}
	return n
}
