// Package events defines the control loop events emitted on the event bus.
// Per-vehicle outcomes go to the metrics sink; the bus only carries
// PhaseEvent, the control loop phase transitions.
package events
