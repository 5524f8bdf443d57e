// Package sim defines the boundary between the scheduling core and the traffic
// micro-simulator that moves released vehicles.
package sim
