package bridge

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// fakeBroker routes publications synchronously to matching subscribers.
type fakeBroker struct {
	mu   sync.Mutex
	subs map[string][]paho.MessageHandler
}

func newFakeBroker() *fakeBroker { return &fakeBroker{subs: map[string][]paho.MessageHandler{}} }

func (b *fakeBroker) client() *mockClient { return &mockClient{broker: b} }

// mockClient implements pahoClient for tests.
type mockClient struct {
	opts        *paho.ClientOptions
	broker      *fakeBroker
	connectErr  error
	publishErrs []error
	published   []published
	subscribed  []string
	mu          sync.Mutex
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	return &dummyToken{err: m.connectErr}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	data, _ := payload.([]byte)
	m.mu.Lock()
	m.published = append(m.published, published{topic: topic, qos: qos, payload: data})
	var err error
	if len(m.publishErrs) > 0 {
		err = m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
	}
	m.mu.Unlock()
	if err != nil {
		return &dummyToken{err: err}
	}
	if m.broker != nil {
		m.broker.mu.Lock()
		handlers := append([]paho.MessageHandler(nil), m.broker.subs[topic]...)
		m.broker.mu.Unlock()
		for _, h := range handlers {
			h(nil, mockMessage{topic: topic, p: data})
		}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, _ byte, cb paho.MessageHandler) paho.Token {
	m.mu.Lock()
	m.subscribed = append(m.subscribed, topic)
	m.mu.Unlock()
	if m.broker != nil {
		m.broker.mu.Lock()
		m.broker.subs[topic] = append(m.broker.subs[topic], cb)
		m.broker.mu.Unlock()
	}
	return &dummyToken{}
}

func (m *mockClient) publishedOn(topic string) []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []published
	for _, p := range m.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct {
	topic string
	p     []byte
}

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return m.topic }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}

func useClients(clients ...*mockClient) func() {
	var i int
	var mu sync.Mutex
	newMQTTClient = func(o *paho.ClientOptions) pahoClient {
		mu.Lock()
		defer mu.Unlock()
		c := clients[i%len(clients)]
		i++
		c.opts = o
		return c
	}
	return func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } }
}
