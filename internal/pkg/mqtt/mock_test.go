package mqtt

import (
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mockToken struct {
	err      error
	complete bool
}

func (t *mockToken) Wait() bool                       { return t.complete }
func (t *mockToken) WaitTimeout(_ time.Duration) bool { return t.complete }
func (t *mockToken) Error() error                     { return t.err }

func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.complete {
		close(ch)
	}
	return ch
}

func doneToken() *mockToken {
	return &mockToken{complete: true}
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 0 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 1 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

type published struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  any
}

// MockClient records publishes and subscriptions.
type MockClient struct {
	ConnectFunc   func() paho_mqtt.Token
	PublishFunc   func(topic string, qos byte, retained bool, payload any) paho_mqtt.Token
	SubscribeFunc func(topic string, qos byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token

	mu            sync.Mutex
	Published     []published
	Subscriptions map[string]paho_mqtt.MessageHandler
}

func (m *MockClient) Connect() paho_mqtt.Token {
	if m.ConnectFunc != nil {
		return m.ConnectFunc()
	}
	return doneToken()
}

func (m *MockClient) Publish(topic string, qos byte, retained bool, payload any) paho_mqtt.Token {
	m.mu.Lock()
	m.Published = append(m.Published, published{Topic: topic, QoS: qos, Retained: retained, Payload: payload})
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(topic, qos, retained, payload)
	}
	return doneToken()
}

func (m *MockClient) Subscribe(topic string, qos byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token {
	m.mu.Lock()
	if m.Subscriptions == nil {
		m.Subscriptions = map[string]paho_mqtt.MessageHandler{}
	}
	m.Subscriptions[topic] = callback
	m.mu.Unlock()
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(topic, qos, callback)
	}
	return doneToken()
}
