package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/crossroad/core/sim"
	"github.com/kilianp07/crossroad/infra/logger"
)

// Responder serves a local sim.Adapter to a remote control loop: it applies
// every command received on the command topic and publishes the outcome on
// the ack topic. Commands are applied one at a time in arrival order.
type Responder struct {
	cfg     Config
	target  sim.Adapter
	log     logger.Logger
	cli     pahoClient
	mu      sync.Mutex
	stopped chan struct{}
	once    sync.Once
}

// NewResponder creates a responder applying commands to target.
func NewResponder(cfg Config, target sim.Adapter) *Responder {
	cfg.SetDefaults()
	return &Responder{cfg: cfg, target: target, log: logger.New("bridge-responder"), stopped: make(chan struct{})}
}

// Serve connects and handles commands until ctx is canceled or the control
// side sends a disconnect command.
func (r *Responder) Serve(ctx context.Context) error {
	if r.cfg.Broker == "" {
		return fmt.Errorf("%w: bridge broker not configured", sim.ErrMissingEnvironment)
	}
	opts, err := NewClientOptions(r.cfg, r.cfg.ClientID+"-sim")
	if err != nil {
		return err
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}
	r.cli = c
	defer c.Disconnect(250)
	if token := c.Subscribe(r.cfg.CommandTopic(), r.cfg.QoS, r.onCommand); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe: %w", token.Error())
	}
	r.log.Infof("serving simulator on %s", r.cfg.CommandTopic())
	select {
	case <-ctx.Done():
	case <-r.stopped:
		r.log.Infof("control side disconnected")
	}
	return nil
}

func (r *Responder) onCommand(_ paho.Client, msg paho.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		r.log.Errorf("decode command: %v", err)
		return
	}
	if cmd.Op == OpDisconnect {
		r.once.Do(func() { close(r.stopped) })
		return
	}
	r.mu.Lock()
	err := r.apply(cmd)
	r.mu.Unlock()

	ack := Ack{CommandID: cmd.CommandID, OK: err == nil}
	if err != nil {
		ack.Error = err.Error()
		r.log.Warnf("%s %s failed: %v", cmd.Op, cmd.VehicleID, err)
	}
	payload, err := json.Marshal(ack)
	if err != nil {
		r.log.Errorf("marshal ack: %v", err)
		return
	}
	token := r.cli.Publish(r.cfg.AckTopic(), r.cfg.QoS, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		r.log.Errorf("ack publish timeout for %s", cmd.CommandID)
		return
	}
	if err := token.Error(); err != nil {
		r.log.Errorf("publish ack %s: %v", cmd.CommandID, err)
	}
}

func (r *Responder) apply(cmd Command) error {
	switch cmd.Op {
	case OpInject:
		return r.target.Inject(cmd.VehicleID, cmd.Route, cmd.Lane, cmd.DepartSpeed)
	case OpSpeedMode:
		return r.target.OverrideSpeedControl(cmd.VehicleID, sim.SpeedMode(cmd.SpeedMode))
	case OpSetSpeed:
		return r.target.SetSpeed(cmd.VehicleID, cmd.Speed)
	case OpAdvance:
		return r.target.AdvanceStep()
	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
}
