package bridge

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config defines the MQTT connection and topic layout of the simulator bridge.
type Config struct {
	Broker       string `json:"broker"`
	ClientID     string `json:"client_id"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	TopicPrefix  string `json:"topic_prefix"`
	QoS          byte   `json:"qos"`
	AckTimeoutMS int    `json:"ack_timeout_ms"`
	UseTLS       bool   `json:"use_tls"`
	ClientCert   string `json:"client_cert"`
	ClientKey    string `json:"client_key"`
	CABundle     string `json:"ca_bundle"`

	TLSConfig *tls.Config `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "crossroad"
	}
	if c.ClientID == "" {
		c.ClientID = "crossroad-control"
	}
	if c.AckTimeoutMS <= 0 {
		c.AckTimeoutMS = 2000
	}
}

// Validate checks value ranges. An empty broker is reported by NewAdapter.
func (c Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", c.QoS)
	}
	if c.AckTimeoutMS < 0 {
		return fmt.Errorf("ack_timeout_ms must not be negative")
	}
	return nil
}

// AckTimeout returns the configured acknowledgment timeout.
func (c Config) AckTimeout() time.Duration {
	return time.Duration(c.AckTimeoutMS) * time.Millisecond
}

// CommandTopic is where the control side publishes commands.
func (c Config) CommandTopic() string { return c.TopicPrefix + "/command" }

// AckTopic is where the simulator side publishes acknowledgments.
func (c Config) AckTopic() string { return c.TopicPrefix + "/ack" }

// NewClientOptions builds paho client options from Config.
func NewClientOptions(cfg Config, clientID string) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = false
	// Handlers publish acks; with ordered delivery a QoS>0 wait would deadlock.
	opts.SetOrderMatters(false)
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificate found in %s", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
