package config

import (
	"fmt"

	"github.com/kilianp07/crossroad/infra/bridge"
)

// Simulator modes.
const (
	ModeKinematic = "kinematic"
	ModeBridge    = "bridge"
)

// SimulatorConfig selects and configures the simulation adapter.
type SimulatorConfig struct {
	Mode string `json:"mode"`
	// RouteLengthM is the distance a vehicle covers before leaving the
	// kinematic network.
	RouteLengthM float64 `json:"route_length_m"`
	// RouteFile is where `crossroad routes` writes the SUMO route file.
	RouteFile string `json:"route_file"`
	// SUMOConfig, when set in bridge mode, requires a SUMO installation.
	SUMOConfig string        `json:"sumo_config"`
	Bridge     bridge.Config `json:"bridge"`
}

// SetDefaults fills unset fields.
func (c *SimulatorConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeKinematic
	}
	if c.RouteLengthM == 0 {
		c.RouteLengthM = 400
	}
	if c.RouteFile == "" {
		c.RouteFile = "data/cross.rou.xml"
	}
	c.Bridge.SetDefaults()
}

// Validate checks the mode and bridge settings.
func (c SimulatorConfig) Validate() error {
	switch c.Mode {
	case ModeKinematic:
		if c.RouteLengthM <= 0 {
			return fmt.Errorf("route_length_m must be positive")
		}
	case ModeBridge:
		if err := c.Bridge.Validate(); err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
