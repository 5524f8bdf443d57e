package simulator

import "fmt"

// Config holds the kinematic simulator parameters.
type Config struct {
	StepLengthSeconds float64 `json:"step_length_seconds"`
	RouteLengthM      float64 `json:"route_length_m"`
	// MaxSpeedMPS caps the speed while the simulator's own control is active.
	MaxSpeedMPS float64 `json:"max_speed_mps"`
}

// SetDefaults fills unset fields with the VehicleA defaults.
func (c *Config) SetDefaults() {
	if c.StepLengthSeconds == 0 {
		c.StepLengthSeconds = 0.1
	}
	if c.RouteLengthM == 0 {
		c.RouteLengthM = 400
	}
	if c.MaxSpeedMPS == 0 {
		c.MaxSpeedMPS = 15
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.StepLengthSeconds <= 0 {
		return fmt.Errorf("step length must be positive")
	}
	if c.RouteLengthM <= 0 {
		return fmt.Errorf("route length must be positive")
	}
	if c.MaxSpeedMPS <= 0 {
		return fmt.Errorf("max speed must be positive")
	}
	return nil
}
