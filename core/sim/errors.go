package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEnvironment is returned when the simulator installation cannot be found.
	ErrMissingEnvironment = errors.New("simulator environment missing")
	// ErrAdapterFailure is returned when the simulator rejects a command.
	ErrAdapterFailure = errors.New("simulator adapter failure")
)

// AdapterError describes a rejected simulator command. It matches
// ErrAdapterFailure with errors.Is.
type AdapterError struct {
	Op        string
	VehicleID string
	Err       error
}

func (e *AdapterError) Error() string {
	if e.VehicleID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.VehicleID, e.Err)
}

func (e *AdapterError) Unwrap() []error { return []error{ErrAdapterFailure, e.Err} }

// Failure wraps err as an AdapterError. A nil err yields nil.
func Failure(op, vehicleID string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Op: op, VehicleID: vehicleID, Err: err}
}
