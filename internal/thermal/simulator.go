package thermal

import (
	"context"
	"fmt"
	"sync"

	"github.com/nexpath/thermsim/internal/config"
)

// Simulator owns one simulation context: the grid, its temperature
// field, the clock, and the decimated history. Instances are not safe
// for concurrent use; run independent simulations on separate instances.
type Simulator struct {
	cfg     config.Config
	grid    *Grid
	clock   float64
	steps   int
	history History
	workers int
}

// New validates the configuration and constructs an empty simulator.
// The grid is allocated later by InitGrid.
func New(cfg config.Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, workers: 1}, nil
}

// SetWorkers sets the number of goroutines the stepper fans the voxel
// update out over. Results are identical for any worker count because
// every read comes from the previous step's snapshot.
func (s *Simulator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

func (s *Simulator) Config() config.Config { return s.cfg }
func (s *Simulator) Clock() float64        { return s.clock }
func (s *Simulator) Steps() int            { return s.steps }
func (s *Simulator) History() *History     { return &s.history }

// Grid returns the domain grid, or nil before InitGrid.
func (s *Simulator) Grid() *Grid { return s.grid }

// InitGrid allocates the domain grid for the given physical dimensions
// (mm) at the configured resolution. It may be called once per
// simulator; the grid dimensions are fixed from then on.
func (s *Simulator) InitGrid(dimX, dimY, dimZ float64) error {
	if s.grid != nil {
		return ErrAlreadyInitialized
	}
	g, err := NewGrid(dimX, dimY, dimZ, s.cfg.Resolution, s.cfg.AmbientTemp)
	if err != nil {
		return err
	}
	s.grid = g
	return nil
}

// DepositLayer rasterizes one layer footprint into the grid at the
// given z index. Every cell the footprint marks becomes material at
// extrusion temperature, overwriting whatever temperature was there.
// Only the addressed z level is touched.
func (s *Simulator) DepositLayer(fp *Footprint, z int) error {
	if s.grid == nil {
		return ErrNotInitialized
	}
	if z < 0 || z >= s.grid.NZ {
		return fmt.Errorf("%w: z=%d, nz=%d", ErrIndexOutOfRange, z, s.grid.NZ)
	}
	if fp.NX != s.grid.NX || fp.NY != s.grid.NY {
		return fmt.Errorf("%w: footprint %dx%d on grid %dx%d",
			ErrInvalidDimensions, fp.NX, fp.NY, s.grid.NX, s.grid.NY)
	}

	for i := 0; i < fp.NX; i++ {
		for j := 0; j < fp.NY; j++ {
			if !fp.At(i, j) {
				continue
			}
			idx := s.grid.index(i, j, z)
			s.grid.occ[idx] = true
			s.grid.temp[idx] = s.cfg.ExtrusionTemp
		}
	}
	return nil
}

// Step advances the temperature field by one time step with an explicit
// forward-time central-space update over interior material voxels. The
// outermost index on every axis is a fixed boundary layer and is never
// updated. Surface voxels (any void axis neighbor) additionally lose
// heat to the ambient by convection. The clock advances by exactly one
// time step, and a history sample is appended every HistoryInterval-th
// step.
func (s *Simulator) Step() error {
	if s.grid == nil {
		return ErrNotInitialized
	}

	g := s.grid
	prev := g.temp
	next := make([]float64, len(prev))
	copy(next, prev)

	if s.workers > 1 && g.NX > 2 {
		s.stepParallel(prev, next)
	} else {
		s.stepSlab(prev, next, 1, g.NX-1)
	}

	g.temp = next
	s.clock += s.cfg.TimeStep
	s.steps++

	if s.steps%s.cfg.HistoryInterval == 0 {
		s.history.append(s.sample())
	}
	return nil
}

// stepParallel partitions the interior x range into contiguous slabs,
// one per worker. Workers only read prev and write disjoint ranges of
// next, so partitioning does not affect the result.
func (s *Simulator) stepParallel(prev, next []float64) {
	interior := s.grid.NX - 2
	workers := s.workers
	if workers > interior {
		workers = interior
	}
	chunk := (interior + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := 1 + w*chunk
		hi := lo + chunk
		if hi > s.grid.NX-1 {
			hi = s.grid.NX - 1
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			s.stepSlab(prev, next, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// stepSlab applies the FTCS update to interior material voxels with
// x index in [iLo, iHi). All reads come from prev.
func (s *Simulator) stepSlab(prev, next []float64, iLo, iHi int) {
	g := s.grid
	dt := s.cfg.TimeStep
	alpha := s.cfg.Diffusivity()
	hc := s.cfg.HeatCapacity()

	// Flat-index strides for the six axis neighbors.
	sx := g.NY * g.NZ
	sy := g.NZ

	for i := iLo; i < iHi; i++ {
		for j := 1; j < g.NY-1; j++ {
			for k := 1; k < g.NZ-1; k++ {
				idx := g.index(i, j, k)
				if !g.occ[idx] {
					continue
				}

				center := prev[idx]
				laplacian := prev[idx+sx] + prev[idx-sx] +
					prev[idx+sy] + prev[idx-sy] +
					prev[idx+1] + prev[idx-1] -
					6*center

				t := center + alpha*dt*laplacian

				if !g.occ[idx+sx] || !g.occ[idx-sx] ||
					!g.occ[idx+sy] || !g.occ[idx-sy] ||
					!g.occ[idx+1] || !g.occ[idx-1] {
					t += s.cfg.ConvectionCoeff * (s.cfg.AmbientTemp - center) * dt / hc
				}

				next[idx] = t
			}
		}
	}
}

// sample reads the current field statistics: max/min over the whole
// field, average over material voxels (ambient when none).
func (s *Simulator) sample() Sample {
	g := s.grid
	maxT, minT := g.temp[0], g.temp[0]
	sum, count := 0.0, 0

	for idx, t := range g.temp {
		if t > maxT {
			maxT = t
		}
		if t < minT {
			minT = t
		}
		if g.occ[idx] {
			sum += t
			count++
		}
	}

	avg := s.cfg.AmbientTemp
	if count > 0 {
		avg = sum / float64(count)
	}
	return Sample{Time: s.clock, MaxTemp: maxT, MinTemp: minT, AvgTemp: avg}
}

// Snapshot returns the current field statistics without appending to
// the history.
func (s *Simulator) Snapshot() (Sample, error) {
	if s.grid == nil {
		return Sample{}, ErrNotInitialized
	}
	return s.sample(), nil
}

// Run invokes Step numSteps times, checking ctx between steps, then
// returns the analysis report. numSteps = 0 is legal and reports the
// current, unstepped state.
func (s *Simulator) Run(ctx context.Context, numSteps int) (*Report, error) {
	if s.grid == nil {
		return nil, ErrNotInitialized
	}
	for i := 0; i < numSteps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			return nil, err
		}
	}
	return s.Analyze()
}
