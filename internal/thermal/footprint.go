package thermal

import "math"

// Footprint is a 2D occupancy mask over the (x, y) plane, aligned to the
// grid discretization. It is the per-layer input handed over by the
// geometry collaborator.
type Footprint struct {
	NX, NY int
	mask   []bool
}

func NewFootprint(nx, ny int) *Footprint {
	return &Footprint{NX: nx, NY: ny, mask: make([]bool, nx*ny)}
}

func (f *Footprint) Set(i, j int) {
	f.mask[i*f.NY+j] = true
}

func (f *Footprint) At(i, j int) bool {
	return f.mask[i*f.NY+j]
}

// Count returns the number of occupied cells in the mask.
func (f *Footprint) Count() int {
	n := 0
	for _, m := range f.mask {
		if m {
			n++
		}
	}
	return n
}

// FullFootprint covers the entire layer.
func FullFootprint(nx, ny int) *Footprint {
	f := NewFootprint(nx, ny)
	for i := range f.mask {
		f.mask[i] = true
	}
	return f
}

// DiscFootprint is a centered disc with a 5-voxel margin to the layer
// edge, the shape the toolpath stage emits for cylindrical test parts.
func DiscFootprint(nx, ny int) *Footprint {
	f := NewFootprint(nx, ny)
	cx, cy := nx/2, ny/2
	radius := min(cx, cy) - 5
	if radius < 0 {
		return f
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			dx, dy := float64(i-cx), float64(j-cy)
			if math.Sqrt(dx*dx+dy*dy) <= float64(radius) {
				f.Set(i, j)
			}
		}
	}
	return f
}
