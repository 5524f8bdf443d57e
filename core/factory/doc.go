// Package factory is a small generic registry used to build pluggable modules
// (optimizers, metrics sinks) from configuration. A module is selected by a
// type string and configured by a raw map that its factory decodes into a
// typed struct.
//
//	reg := factory.NewRegistry[optimizer.Optimizer]()
//	_ = reg.Register("fifo", func(conf map[string]any) (optimizer.Optimizer, error) {
//	    var c optimizer.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return optimizer.NewFIFO(c), nil
//	})
//	opt, err := reg.Create(factory.ModuleConfig{Type: "fifo"})
package factory
