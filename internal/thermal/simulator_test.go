package thermal

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexpath/thermsim/internal/config"
)

// stableConfig satisfies alpha*dt/h^2 <= 1/6 by a wide margin:
// alpha = 0.5/2000 = 2.5e-4, dt = 0.1, h = 1.
func stableConfig() config.Config {
	return *config.DefaultConfig()
}

func newInitialized(t *testing.T, cfg config.Config) *Simulator {
	t.Helper()
	sim, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, sim.InitGrid(10, 10, 10))
	return sim
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := stableConfig()
	cfg.TimeStep = 0
	_, err := New(cfg)
	assert.True(t, errors.Is(err, config.ErrInvalid), "got %v", err)
}

func TestInitGridTwice(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	err := sim.InitGrid(10, 10, 10)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestUninitializedUse(t *testing.T) {
	sim, err := New(stableConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, sim.Step(), ErrNotInitialized)
	assert.Nil(t, sim.Grid(), "step must not allocate")
	assert.Equal(t, 0.0, sim.Clock(), "step must not advance the clock")
	assert.Equal(t, 0, sim.History().Len())

	assert.ErrorIs(t, sim.DepositLayer(FullFootprint(11, 11), 0), ErrNotInitialized)

	_, err = sim.Analyze()
	assert.ErrorIs(t, err, ErrNoSimulationData)

	_, err = sim.Run(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestDepositLayer(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	g := sim.Grid()

	require.NoError(t, sim.DepositLayer(FullFootprint(g.NX, g.NY), 5))

	assert.Equal(t, g.NX*g.NY, g.MaterialCount())
	assert.Equal(t, sim.Config().ExtrusionTemp, g.Temp(5, 5, 5))
	assert.Equal(t, sim.Config().AmbientTemp, g.Temp(5, 5, 4), "other levels untouched")
	assert.False(t, g.Occupied(5, 5, 6))
}

func TestDepositLayerErrors(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	g := sim.Grid()

	assert.ErrorIs(t, sim.DepositLayer(FullFootprint(g.NX, g.NY), -1), ErrIndexOutOfRange)
	assert.ErrorIs(t, sim.DepositLayer(FullFootprint(g.NX, g.NY), g.NZ), ErrIndexOutOfRange)
	assert.ErrorIs(t, sim.DepositLayer(FullFootprint(3, 3), 0), ErrInvalidDimensions)
}

func TestDepositLayerRevisited(t *testing.T) {
	// Depositing the same level twice must not corrupt state.
	sim := newInitialized(t, stableConfig())
	g := sim.Grid()

	require.NoError(t, sim.DepositLayer(FullFootprint(g.NX, g.NY), 5))
	require.NoError(t, sim.Step())
	require.NoError(t, sim.DepositLayer(FullFootprint(g.NX, g.NY), 5))

	assert.Equal(t, g.NX*g.NY, g.MaterialCount())
	assert.Equal(t, sim.Config().ExtrusionTemp, g.Temp(5, 5, 5))
}

func TestClockAdvance(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	require.NoError(t, sim.DepositLayer(DiscFootprint(11, 11), 5))

	for i := 0; i < 7; i++ {
		require.NoError(t, sim.Step())
	}
	assert.InDelta(t, 7*sim.Config().TimeStep, sim.Clock(), 1e-12)
	assert.Equal(t, 7, sim.Steps())
}

func TestDecimationLaw(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	require.NoError(t, sim.DepositLayer(FullFootprint(11, 11), 5))

	for i := 0; i < 37; i++ {
		require.NoError(t, sim.Step())
	}
	assert.Equal(t, 3, sim.History().Len())

	samples := sim.History().Samples()
	dt := sim.Config().TimeStep
	assert.InDelta(t, 10*dt, samples[0].Time, 1e-12)
	assert.InDelta(t, 20*dt, samples[1].Time, 1e-12)
	assert.InDelta(t, 30*dt, samples[2].Time, 1e-12)
}

func TestDeterminism(t *testing.T) {
	run := func(workers int) (*Report, []float64) {
		sim := newInitialized(t, stableConfig())
		sim.SetWorkers(workers)
		require.NoError(t, sim.DepositLayer(FullFootprint(11, 11), 4))
		require.NoError(t, sim.DepositLayer(FullFootprint(11, 11), 5))
		rep, err := sim.Run(context.Background(), 50)
		require.NoError(t, err)
		temps := make([]float64, len(sim.Grid().temp))
		copy(temps, sim.Grid().temp)
		return rep, temps
	}

	rep1, temps1 := run(1)
	rep2, temps2 := run(1)
	assert.Equal(t, temps1, temps2, "serial runs must be bit-identical")
	assert.Equal(t, rep1.History, rep2.History)

	for _, workers := range []int{2, 4, 16} {
		_, tempsW := run(workers)
		assert.Equal(t, temps1, tempsW, "workers=%d must match serial", workers)
	}
}

func TestBoundaryConservation(t *testing.T) {
	// Fully occupied grid, no convection. The field is uniform except
	// for a perturbation at least two voxels from every face, so no
	// heat crosses into the fixed boundary layer: the sum over occupied
	// voxels is conserved by pure diffusion.
	cfg := stableConfig()
	cfg.ConvectionCoeff = 0
	sim, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, sim.InitGrid(10, 10, 10))

	g := sim.Grid()
	for idx := range g.occ {
		g.occ[idx] = true
		g.temp[idx] = 100.0
	}
	for i := 2; i < g.NX-2; i++ {
		for j := 2; j < g.NY-2; j++ {
			for k := 2; k < g.NZ-2; k++ {
				g.temp[g.index(i, j, k)] = 100.0 + float64((i*7+j*3+k)%13)
			}
		}
	}

	sum := func() float64 {
		total := 0.0
		for _, t := range g.temp {
			total += t
		}
		return total
	}

	before := sum()
	require.NoError(t, sim.Step())
	assert.InDelta(t, before, sum(), 1e-9*math.Abs(before))
}

func TestSurfaceCoolingMonotonic(t *testing.T) {
	// Ambient below extrusion with convection on: a surface voxel must
	// never heat up absent renewed deposition.
	sim := newInitialized(t, stableConfig())
	g := sim.Grid()
	require.NoError(t, sim.DepositLayer(DiscFootprint(g.NX, g.NY), 5))

	prev := g.Temp(5, 5, 5)
	for i := 0; i < 100; i++ {
		require.NoError(t, sim.Step())
		cur := g.Temp(5, 5, 5)
		assert.LessOrEqual(t, cur, prev+1e-12, "step %d", i)
		prev = cur
	}
	assert.Greater(t, prev, sim.Config().AmbientTemp)
}

func TestRunRoundTrip(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	g := sim.Grid()
	require.Equal(t, 11, g.NZ)
	require.NoError(t, sim.DepositLayer(FullFootprint(g.NX, g.NY), 5))

	rep, err := sim.Run(context.Background(), 20)
	require.NoError(t, err)

	cfg := sim.Config()
	assert.InDelta(t, 20*cfg.TimeStep, rep.SimulationTime, 1e-12)
	assert.Equal(t, 20, rep.NumSteps)
	assert.Greater(t, rep.TemperatureStats.FinalAvg, cfg.AmbientTemp)
	assert.Less(t, rep.TemperatureStats.FinalAvg, cfg.ExtrusionTemp)
	assert.Len(t, rep.History, 2)
}

func TestRunZeroSteps(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	rep, err := sim.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, rep.NumSteps)
	assert.Equal(t, 0.0, rep.SimulationTime)
	assert.Empty(t, rep.History)
	assert.Equal(t, sim.Config().AmbientTemp, rep.TemperatureStats.FinalAvg)
}

func TestRunCanceled(t *testing.T) {
	sim := newInitialized(t, stableConfig())
	require.NoError(t, sim.DepositLayer(FullFootprint(11, 11), 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Run(ctx, 1000)
	assert.ErrorIs(t, err, context.Canceled)
}
