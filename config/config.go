package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/crossroad/core/factory"
	"github.com/kilianp07/crossroad/core/metrics"
)

// EnvPrefix marks environment overrides: K_SIMULATION__SEED=7 sets simulation.seed.
const EnvPrefix = "K_"

// Config is the full experiment configuration read by Load.
type Config struct {
	Simulation SimulationConfig     `json:"simulation"`
	Optimizer  factory.ModuleConfig `json:"optimizer"`
	Simulator  SimulatorConfig      `json:"simulator"`
	Metrics    metrics.Config       `json:"metrics"`
	Logging    LoggingConfig        `json:"logging"`
	Sentry     SentryConfig         `json:"sentry"`
}

// Load reads the YAML or JSON file at path, applies environment overrides,
// fills defaults and validates the result. An empty path loads defaults and
// the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Simulator.SetDefaults()
	c.Logging.SetDefaults()
	if c.Optimizer.Type == "" {
		c.Optimizer.Type = "annealing"
	}
	if c.Metrics.PrometheusAddr == "" {
		c.Metrics.PrometheusAddr = ":2112"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Simulator.Validate(); err != nil {
		return fmt.Errorf("simulator: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
