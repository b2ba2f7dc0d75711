// Package thermal is the numerical core of the process simulator: it
// predicts temperature evolution of material deposited layer by layer.
//
// The main types are:
//
//   - [Grid]: voxel occupancy field with a co-indexed temperature field
//   - [Footprint]: per-layer 2D occupancy mask from the toolpath stage
//   - [Simulator]: owns one simulation context (grid, clock, history)
//   - [Report]: the analysis output handed to the persistence layer
//
// The stepper is an explicit forward-time central-space (FTCS) finite
// difference scheme with convective loss at material/void interfaces.
// The scheme is conditionally stable; use [CheckStability] before long
// runs, since a violated bound oscillates instead of erroring.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Run independent simulations
// on separate instances; [Simulator.SetWorkers] parallelizes inside a
// single step without changing results.
package thermal
