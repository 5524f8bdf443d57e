package config

import (
	"fmt"

	"github.com/kilianp07/crossroad/core/model"
)

// SimulationConfig holds the run timing and demand settings.
type SimulationConfig struct {
	StepLengthSeconds    float64 `json:"step_length_seconds"`
	HorizonSeconds       float64 `json:"horizon_seconds"`
	ControlIntervalSteps int     `json:"control_interval_steps"`
	// Seed drives demand generation. Zero selects the default seed.
	Seed int64 `json:"seed"`
	// HourlyVolume is the arrival target in vehicles per hour. Zero means the
	// operator is asked at start.
	HourlyVolume        float64 `json:"hourly_volume"`
	MaxLengthToControlM float64 `json:"max_length_to_control_m"`
	CruiseSpeedMPS      float64 `json:"cruise_speed_mps"`
	Headless            *bool   `json:"headless"`
}

// SetDefaults applies the reference intersection settings.
func (c *SimulationConfig) SetDefaults() {
	if c.StepLengthSeconds == 0 {
		c.StepLengthSeconds = model.DefaultStepLengthSeconds
	}
	if c.HorizonSeconds == 0 {
		c.HorizonSeconds = model.DefaultHorizonSeconds
	}
	if c.ControlIntervalSteps == 0 {
		c.ControlIntervalSteps = model.DefaultControlInterval
	}
	if c.Seed == 0 {
		c.Seed = model.DefaultSeed
	}
	if c.MaxLengthToControlM == 0 {
		c.MaxLengthToControlM = model.DefaultMaxLengthToControlM
	}
	if c.CruiseSpeedMPS == 0 {
		c.CruiseSpeedMPS = model.DefaultCruiseSpeedMPS
	}
	if c.Headless == nil {
		headless := true
		c.Headless = &headless
	}
}

// Validate checks value ranges.
func (c SimulationConfig) Validate() error {
	switch {
	case c.StepLengthSeconds <= 0:
		return fmt.Errorf("step_length_seconds must be positive")
	case c.HorizonSeconds < 0:
		return fmt.Errorf("horizon_seconds must not be negative")
	case c.ControlIntervalSteps <= 0:
		return fmt.Errorf("control_interval_steps must be positive")
	case c.HourlyVolume < 0:
		return fmt.Errorf("hourly_volume must not be negative")
	case c.MaxLengthToControlM <= 0:
		return fmt.Errorf("max_length_to_control_m must be positive")
	case c.CruiseSpeedMPS <= 0:
		return fmt.Errorf("cruise_speed_mps must be positive")
	}
	return nil
}

// HorizonSteps converts the horizon to simulation steps.
func (c SimulationConfig) HorizonSteps() int {
	return model.HorizonSteps(c.HorizonSeconds, c.StepLengthSeconds)
}

// LifetimeBudget is the number of steps a released vehicle stays under control.
func (c SimulationConfig) LifetimeBudget() int {
	return model.LifetimeBudget(c.MaxLengthToControlM, c.CruiseSpeedMPS, c.StepLengthSeconds)
}

// IsHeadless reports whether the simulator runs without GUI.
func (c SimulationConfig) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}
