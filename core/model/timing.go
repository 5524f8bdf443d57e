package model

import "math"

const (
	DefaultStepLengthSeconds   = 0.1
	DefaultHorizonSeconds      = 3600.0
	DefaultControlInterval     = 10
	DefaultCruiseSpeedMPS      = 15.0
	DefaultMaxLengthToControlM = 180.0
	DefaultSeed                = 42

	// VolumeNormalizer converts an hourly volume into a per-tick probability.
	VolumeNormalizer = 14000.0
	ThroughShare     = 0.6
	TurnShare        = 0.2
)

// HorizonSteps converts a horizon in seconds into simulation steps.
func HorizonSteps(horizonSeconds, stepLength float64) int {
	if stepLength <= 0 {
		return 0
	}
	return int(math.Round(horizonSeconds / stepLength))
}

// LifetimeBudget is the number of steps a vehicle cruising at speed needs to
// cover maxLength. It is at least one step.
func LifetimeBudget(maxLength, speed, stepLength float64) int {
	per := speed * stepLength
	if per <= 0 {
		return 1
	}
	n := int(math.Ceil(maxLength/per - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}
