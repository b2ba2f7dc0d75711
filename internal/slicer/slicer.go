// Package slicer stands in for the toolpath stage at its boundary with
// the thermal core: it turns part geometry into per-layer occupancy
// footprints at grid z levels, in non-decreasing z order.
package slicer

import (
	"errors"
	"fmt"
	"math"

	"github.com/nexpath/thermsim/internal/thermal"
)

var ErrInvalidParams = errors.New("slicer: invalid parameters")

// Shape selects the footprint the plan emits for every layer.
type Shape string

const (
	ShapeDisc Shape = "disc"
	ShapeFull Shape = "full"
)

type Params struct {
	LayerHeight float64 `yaml:"layer_height"` // mm
	ModelHeight float64 `yaml:"model_height"` // mm
	Shape       Shape   `yaml:"shape"`
}

func DefaultParams() Params {
	return Params{LayerHeight: 0.2, ModelHeight: 10.0, Shape: ShapeDisc}
}

// Layer pairs a footprint with the grid z index it is deposited at.
type Layer struct {
	Z         int
	Footprint *thermal.Footprint
}

// Plan computes the layer sequence for a grid of the given extents and
// resolution. Layers whose z level rounds past the top of the grid are
// clipped; consecutive layers landing on the same z index collapse into
// one (the depositor is idempotent per level, so emitting both would
// only repeat work).
func Plan(p Params, nx, ny, nz int, resolution float64) ([]Layer, error) {
	if p.LayerHeight <= 0 {
		return nil, fmt.Errorf("%w: layer height %g", ErrInvalidParams, p.LayerHeight)
	}
	if p.ModelHeight <= 0 {
		return nil, fmt.Errorf("%w: model height %g", ErrInvalidParams, p.ModelHeight)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %g", ErrInvalidParams, resolution)
	}

	var fp *thermal.Footprint
	switch p.Shape {
	case ShapeFull:
		fp = thermal.FullFootprint(nx, ny)
	case ShapeDisc, "":
		fp = thermal.DiscFootprint(nx, ny)
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrInvalidParams, p.Shape)
	}

	numLayers := int(p.ModelHeight / p.LayerHeight)
	layers := make([]Layer, 0, numLayers)
	lastZ := -1
	for i := 0; i < numLayers; i++ {
		z := int(math.Round(float64(i) * p.LayerHeight / resolution))
		if z >= nz {
			break
		}
		if z == lastZ {
			continue
		}
		layers = append(layers, Layer{Z: z, Footprint: fp})
		lastZ = z
	}
	return layers, nil
}
