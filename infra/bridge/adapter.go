package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/core/sim"
	"github.com/kilianp07/crossroad/infra/logger"
)

// ErrAckTimeout is returned when the simulator does not acknowledge a command in time.
var ErrAckTimeout = errors.New("ack timeout")

// ErrRejected is returned when the simulator acknowledges a command with a failure.
var ErrRejected = errors.New("rejected by simulator")

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Adapter drives a remote simulator over MQTT. Every call publishes one
// command and blocks until the matching acknowledgment arrives. Nothing is
// retried.
type Adapter struct {
	cli     pahoClient
	cfg     Config
	timeout time.Duration
	log     logger.Logger

	mu       sync.Mutex
	ackChans map[string]chan Ack
}

// NewAdapter connects to the broker and subscribes to the ack topic.
func NewAdapter(cfg Config) (*Adapter, error) {
	cfg.SetDefaults()
	if cfg.Broker == "" {
		return nil, fmt.Errorf("%w: bridge broker not configured", sim.ErrMissingEnvironment)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	a := &Adapter{
		cfg:      cfg,
		timeout:  cfg.AckTimeout(),
		log:      logger.New("bridge"),
		ackChans: make(map[string]chan Ack),
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		a.log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, sim.Failure("connect", "", token.Error())
	}
	if token := c.Subscribe(cfg.AckTopic(), cfg.QoS, a.onAck); token.Wait() && token.Error() != nil {
		c.Disconnect(250)
		return nil, sim.Failure("subscribe", "", token.Error())
	}
	a.cli = c
	a.log.Infof("connected to %s, commands on %s", cfg.Broker, cfg.CommandTopic())
	return a, nil
}

func (a *Adapter) onAck(_ paho.Client, msg paho.Message) {
	var ack Ack
	if err := json.Unmarshal(msg.Payload(), &ack); err != nil {
		a.log.Errorf("failed to decode ack: %v", err)
		return
	}
	a.mu.Lock()
	ch, ok := a.ackChans[ack.CommandID]
	a.mu.Unlock()
	if !ok {
		a.log.Warnf("ack for unknown command %s", ack.CommandID)
		return
	}
	select {
	case ch <- ack:
	default:
	}
}

// Inject implements sim.Adapter.
func (a *Adapter) Inject(id string, route model.Route, lane int, departSpeed float64) error {
	return a.call(Command{Op: OpInject, VehicleID: id, Route: route, Lane: lane, DepartSpeed: departSpeed})
}

// OverrideSpeedControl implements sim.Adapter.
func (a *Adapter) OverrideSpeedControl(id string, mode sim.SpeedMode) error {
	return a.call(Command{Op: OpSpeedMode, VehicleID: id, SpeedMode: int(mode)})
}

// SetSpeed implements sim.Adapter.
func (a *Adapter) SetSpeed(id string, speed float64) error {
	return a.call(Command{Op: OpSetSpeed, VehicleID: id, Speed: speed})
}

// AdvanceStep implements sim.Adapter.
func (a *Adapter) AdvanceStep() error {
	return a.call(Command{Op: OpAdvance})
}

func (a *Adapter) call(cmd Command) error {
	cmd.CommandID = uuid.NewString()
	cmd.Timestamp = time.Now().UnixMilli()
	payload, err := json.Marshal(cmd)
	if err != nil {
		return sim.Failure(cmd.Op, cmd.VehicleID, err)
	}

	ch := make(chan Ack, 1)
	a.mu.Lock()
	a.ackChans[cmd.CommandID] = ch
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.ackChans, cmd.CommandID)
		a.mu.Unlock()
	}()

	token := a.cli.Publish(a.cfg.CommandTopic(), a.cfg.QoS, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return sim.Failure(cmd.Op, cmd.VehicleID, err)
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()
	select {
	case ack := <-ch:
		if !ack.OK {
			return sim.Failure(cmd.Op, cmd.VehicleID, fmt.Errorf("%w: %s", ErrRejected, ack.Error))
		}
		return nil
	case <-timer.C:
		return sim.Failure(cmd.Op, cmd.VehicleID, fmt.Errorf("%w after %s", ErrAckTimeout, a.timeout))
	}
}

// Close tells the simulator side the run is over and disconnects.
func (a *Adapter) Close() {
	if a.cli == nil || !a.cli.IsConnected() {
		return
	}
	payload, err := json.Marshal(Command{CommandID: uuid.NewString(), Op: OpDisconnect, Timestamp: time.Now().UnixMilli()})
	if err == nil {
		a.cli.Publish(a.cfg.CommandTopic(), a.cfg.QoS, false, payload).WaitTimeout(time.Second)
	}
	a.cli.Disconnect(250)
}
