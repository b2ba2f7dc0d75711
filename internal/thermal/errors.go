package thermal

import (
	"errors"
	"fmt"
)

// Domain errors for simulator operations.
var (
	// ErrNotInitialized indicates a stepping, deposition, or analysis call
	// before the grid was initialized.
	ErrNotInitialized = errors.New("thermal: grid not initialized")

	// ErrAlreadyInitialized indicates a second InitGrid call; construct a
	// new simulator instead of reinitializing.
	ErrAlreadyInitialized = errors.New("thermal: grid already initialized")

	// ErrInvalidDimensions indicates non-positive domain dimensions or a
	// footprint whose shape does not match the grid.
	ErrInvalidDimensions = errors.New("thermal: invalid dimensions")

	// ErrIndexOutOfRange indicates a deposition z index outside [0, nz).
	ErrIndexOutOfRange = errors.New("thermal: z index out of range")

	// ErrNoSimulationData indicates analysis requested before the grid
	// was initialized.
	ErrNoSimulationData = errors.New("thermal: no simulation data")

	// ErrUnstable indicates a configuration violating the explicit-scheme
	// stability bound.
	ErrUnstable = errors.New("thermal: unstable explicit scheme configuration")
)

// StabilityError reports a violated FTCS stability bound with the
// offending stability number.
type StabilityError struct {
	Number float64
	Limit  float64
}

func (e *StabilityError) Error() string {
	return fmt.Sprintf("%v: alpha*dt/h^2 = %.4f exceeds %.4f", ErrUnstable, e.Number, e.Limit)
}

func (e *StabilityError) Unwrap() error {
	return ErrUnstable
}
