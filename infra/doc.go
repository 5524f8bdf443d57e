// Package infra contains technical adapters such as the MQTT simulator
// bridge, metrics exporters and release logs. These packages depend only on
// the interfaces defined in the core packages.
package infra
