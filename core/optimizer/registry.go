package optimizer

import "github.com/kilianp07/crossroad/core/factory"

var registry = factory.NewRegistry[Optimizer]()

// Register adds an optimizer factory identified by name.
func Register(name string, f factory.Factory[Optimizer]) error {
	return registry.Register(name, f)
}

// New creates the optimizer described by cfg.
func New(cfg factory.ModuleConfig) (Optimizer, error) {
	return registry.Create(cfg)
}

func decodeConfig(conf map[string]any) (Config, error) {
	var c Config
	if err := factory.Decode(conf, &c); err != nil {
		return c, err
	}
	c.SetDefaults()
	return c, c.Validate()
}

func init() {
	_ = Register("fifo", func(conf map[string]any) (Optimizer, error) {
		c, err := decodeConfig(conf)
		if err != nil {
			return nil, err
		}
		return NewFIFO(c), nil
	})
	_ = Register("annealing", func(conf map[string]any) (Optimizer, error) {
		c, err := decodeConfig(conf)
		if err != nil {
			return nil, err
		}
		return NewAnnealing(c), nil
	})
}
