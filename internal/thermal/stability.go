package thermal

import "github.com/nexpath/thermsim/internal/config"

// StabilityLimit is the largest stability number the 3D explicit FTCS
// scheme tolerates; beyond it the update oscillates unboundedly instead
// of diffusing.
const StabilityLimit = 1.0 / 6.0

// StabilityNumber returns alpha * dt / h^2 for the configuration. The
// resolution enters squared, so halving the voxel size quarters the
// usable time step.
func StabilityNumber(cfg config.Config) float64 {
	h := cfg.Resolution
	return cfg.Diffusivity() * cfg.TimeStep / (h * h)
}

// CheckStability reports whether the configuration satisfies the
// explicit-scheme bound. Instability is a data-quality concern, not a
// stepping error: the stepper itself never checks, callers decide
// whether to refuse an unstable setup.
func CheckStability(cfg config.Config) error {
	n := StabilityNumber(cfg)
	if n > StabilityLimit {
		return &StabilityError{Number: n, Limit: StabilityLimit}
	}
	return nil
}
