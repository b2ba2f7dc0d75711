package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultResolution      = 1.0  // mm
	DefaultTimeStep        = 0.1  // s
	DefaultAmbientTemp     = 25.0 // °C
	DefaultConvectionCoeff = 10.0 // W/(m²·K)
	DefaultExtrusionTemp   = 200.0
	DefaultCoolingRateMax  = 5.0 // °C/s
	DefaultTempMax         = 250.0
	DefaultHistoryInterval = 10
)

// ErrInvalid marks configuration values rejected by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Material holds the thermal properties of the deposited material.
// Units follow the process convention: conductivity in W/(m·K),
// specific heat in J/(kg·K), density in g/cm³.
type Material struct {
	Conductivity float64 `yaml:"thermal_conductivity"`
	SpecificHeat float64 `yaml:"specific_heat"`
	Density      float64 `yaml:"density"`
}

// Config carries every physical and numerical parameter of a simulation
// run. It is passed by value into the simulator and never mutated after
// validation.
type Config struct {
	Resolution           float64  `yaml:"resolution"`  // grid spacing, mm
	TimeStep             float64  `yaml:"time_step"`   // s
	AmbientTemp          float64  `yaml:"ambient_temperature"`
	ConvectionCoeff      float64  `yaml:"convection_coefficient"`
	ExtrusionTemp        float64  `yaml:"extrusion_temperature"`
	Material             Material `yaml:"material"`
	CoolingRateThreshold float64  `yaml:"cooling_rate_threshold"`
	MaxTempThreshold     float64  `yaml:"max_temp_threshold"`
	HistoryInterval      int      `yaml:"history_interval"` // steps between trace samples
}

func DefaultConfig() *Config {
	return &Config{
		Resolution:      DefaultResolution,
		TimeStep:        DefaultTimeStep,
		AmbientTemp:     DefaultAmbientTemp,
		ConvectionCoeff: DefaultConvectionCoeff,
		ExtrusionTemp:   DefaultExtrusionTemp,
		Material: Material{
			Conductivity: 0.5,
			SpecificHeat: 2000.0,
			Density:      1.0,
		},
		CoolingRateThreshold: DefaultCoolingRateMax,
		MaxTempThreshold:     DefaultTempMax,
		HistoryInterval:      DefaultHistoryInterval,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects parameter values the solver cannot run with. It is
// called once at simulator construction; a Config that passes is frozen
// from then on.
func (c *Config) Validate() error {
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %g", ErrInvalid, c.Resolution)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("%w: time step must be positive, got %g", ErrInvalid, c.TimeStep)
	}
	if c.Material.Conductivity <= 0 {
		return fmt.Errorf("%w: thermal conductivity must be positive, got %g", ErrInvalid, c.Material.Conductivity)
	}
	if c.Material.SpecificHeat <= 0 {
		return fmt.Errorf("%w: specific heat must be positive, got %g", ErrInvalid, c.Material.SpecificHeat)
	}
	if c.Material.Density <= 0 {
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalid, c.Material.Density)
	}
	if c.ConvectionCoeff < 0 {
		return fmt.Errorf("%w: convection coefficient must not be negative, got %g", ErrInvalid, c.ConvectionCoeff)
	}
	if c.HistoryInterval <= 0 {
		return fmt.Errorf("%w: history interval must be positive, got %d", ErrInvalid, c.HistoryInterval)
	}
	return nil
}

// Diffusivity returns alpha = k / (rho * c), the coefficient of the
// diffusion term in the explicit update.
func (c *Config) Diffusivity() float64 {
	return c.Material.Conductivity / (c.Material.Density * c.Material.SpecificHeat)
}

// HeatCapacity returns rho * c, the volumetric term dividing the
// convective surface correction.
func (c *Config) HeatCapacity() float64 {
	return c.Material.Density * c.Material.SpecificHeat
}
