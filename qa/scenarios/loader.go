package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/crossroad/config"
)

// Expected bounds the outcome of a scenario run.
type Expected struct {
	MinGenerated    int     `yaml:"min_generated"`
	MaxGenerated    int     `yaml:"max_generated,omitempty"`
	MaxAverageDelay float64 `yaml:"max_average_delay"`
	// Drained requires every released vehicle to have left the road.
	Drained bool `yaml:"drained"`
}

type Scenario struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description,omitempty"`
	HourlyVolume   float64        `yaml:"hourly_volume"`
	HorizonSeconds float64        `yaml:"horizon_seconds"`
	Seed           int64          `yaml:"seed,omitempty"`
	Optimizer      string         `yaml:"optimizer"`
	OptimizerConf  map[string]any `yaml:"optimizer_conf,omitempty"`
	Expected       Expected       `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}

// Config turns the scenario into a kinematic-mode configuration.
func (s Scenario) Config() (*config.Config, error) {
	cfg := &config.Config{}
	cfg.Simulation.HourlyVolume = s.HourlyVolume
	cfg.Simulation.HorizonSeconds = s.HorizonSeconds
	cfg.Simulation.Seed = s.Seed
	cfg.Optimizer.Type = s.Optimizer
	cfg.Optimizer.Conf = s.OptimizerConf
	cfg.Logging.Level = "error"
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return cfg, nil
}
