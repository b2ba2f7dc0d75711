package thermal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridExtents(t *testing.T) {
	g, err := NewGrid(10, 10, 10, 1.0, 25.0)
	require.NoError(t, err)

	assert.Equal(t, 11, g.NX)
	assert.Equal(t, 11, g.NY)
	assert.Equal(t, 11, g.NZ)
	assert.Equal(t, 0, g.MaterialCount())
	assert.Equal(t, 25.0, g.Temp(5, 5, 5))
}

func TestNewGridFractionalDimensions(t *testing.T) {
	// floor(7.5/2)+1 = 4 per axis
	g, err := NewGrid(7.5, 7.5, 7.5, 2.0, 25.0)
	require.NoError(t, err)
	assert.Equal(t, 4, g.NX)
}

func TestNewGridInvalid(t *testing.T) {
	tests := []struct {
		name          string
		dx, dy, dz, h float64
	}{
		{"zero x", 0, 10, 10, 1},
		{"negative y", 10, -1, 10, 1},
		{"zero z", 10, 10, 0, 1},
		{"zero resolution", 10, 10, 10, 0},
		{"negative resolution", 10, 10, 10, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.dx, tt.dy, tt.dz, tt.h, 25.0)
			assert.True(t, errors.Is(err, ErrInvalidDimensions), "got %v", err)
		})
	}
}

func TestFullFootprint(t *testing.T) {
	fp := FullFootprint(11, 11)
	assert.Equal(t, 121, fp.Count())
	assert.True(t, fp.At(0, 0))
	assert.True(t, fp.At(10, 10))
}

func TestDiscFootprint(t *testing.T) {
	fp := DiscFootprint(21, 21)
	assert.True(t, fp.At(10, 10), "center occupied")
	assert.False(t, fp.At(0, 0), "corner void")
	assert.Greater(t, fp.Count(), 0)
	assert.Less(t, fp.Count(), 21*21)
}

func TestDiscFootprintTooSmall(t *testing.T) {
	// margin exceeds the half-extent; nothing fits
	fp := DiscFootprint(8, 8)
	assert.Equal(t, 0, fp.Count())
}
