package bridge

import "github.com/kilianp07/crossroad/core/model"

// Command operations.
const (
	OpInject     = "inject"
	OpSpeedMode  = "speed_mode"
	OpSetSpeed   = "set_speed"
	OpAdvance    = "advance_step"
	OpDisconnect = "disconnect"
)

// Command is the JSON payload published on the command topic.
type Command struct {
	CommandID   string      `json:"command_id"`
	Op          string      `json:"op"`
	VehicleID   string      `json:"vehicle_id,omitempty"`
	Route       model.Route `json:"route,omitempty"`
	Lane        int         `json:"lane"`
	DepartSpeed float64     `json:"depart_speed,omitempty"`
	Speed       float64     `json:"speed,omitempty"`
	SpeedMode   int         `json:"speed_mode"`
	Timestamp   int64       `json:"timestamp"`
}

// Ack is the JSON payload published on the ack topic.
type Ack struct {
	CommandID string `json:"command_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}
