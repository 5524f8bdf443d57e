package optimizer

import (
	"fmt"

	"github.com/kilianp07/crossroad/core/model"
)

// Config holds the settings shared by the built-in strategies.
type Config struct {
	StepLengthSeconds    float64 `json:"step_length_seconds"`
	ConflictHeadwaySteps int     `json:"conflict_headway_steps"`
	FollowHeadwaySteps   int     `json:"follow_headway_steps"`
	Iterations           int     `json:"iterations"`
	InitialTemperature   float64 `json:"initial_temperature"`
	Cooling              float64 `json:"cooling"`
	Seed                 int64   `json:"seed"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.StepLengthSeconds <= 0 {
		c.StepLengthSeconds = model.DefaultStepLengthSeconds
	}
	if c.ConflictHeadwaySteps <= 0 {
		c.ConflictHeadwaySteps = 20
	}
	if c.FollowHeadwaySteps <= 0 {
		c.FollowHeadwaySteps = 10
	}
	if c.Iterations <= 0 {
		c.Iterations = 500
	}
	if c.InitialTemperature <= 0 {
		c.InitialTemperature = 50
	}
	if c.Cooling <= 0 {
		c.Cooling = 0.99
	}
	if c.Seed == 0 {
		c.Seed = model.DefaultSeed
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Cooling >= 1 {
		return fmt.Errorf("cooling must be below 1")
	}
	if c.StepLengthSeconds <= 0 {
		return fmt.Errorf("step_length_seconds must be positive")
	}
	return nil
}

func (c Config) newLedger() *ledger {
	return newLedger(c.ConflictHeadwaySteps, c.FollowHeadwaySteps)
}
