// Package metrics defines the observability sinks fed by the control loop.
// A sink implements MetricsSink and may implement any of the optional
// recorder interfaces; callers check for them with a type assertion.
package metrics
