// Package simulator provides a headless in-process simulator implementing
// sim.Adapter. Vehicles move along their route at a constant speed per step
// and leave the network once they have covered the route length. It stands
// in for SUMO in tests, scenario runs and behind the MQTT bridge.
package simulator
