package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/config"
)

var ErrTimeout = errors.New("mqtt operation timed out")

const defaultTimeout = 5 * time.Second

// client is the part of paho_mqtt.Client the service uses.
type client interface {
	Connect() paho_mqtt.Token
	Publish(topic string, qos byte, retained bool, payload any) paho_mqtt.Token
	Subscribe(topic string, qos byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token
}

type service struct {
	client  client
	logger  *zap.Logger
	timeout time.Duration

	mu sync.Mutex
	// registered holds the discovery payloads last published per device, by topic.
	registered map[string]map[string]string
}

func New(client client) *service {
	return &service{
		client:     client,
		logger:     zap.L(),
		timeout:    defaultTimeout,
		registered: map[string]map[string]string{},
	}
}

// NewClient builds a paho client for the configured broker.
func NewClient(cfg config.MQTTConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultTimeout)
	return paho_mqtt.NewClient(opts)
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(s.timeout)
	if err := token.Error(); err != nil {
		return err
	}
	if res {
		return nil
	}
	return fmt.Errorf("connect: %w", ErrTimeout)
}

func (s *service) publish(topic string, qos byte, retained bool, payload any) error {
	token := s.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish %s: %w", topic, ErrTimeout)
	}
	return token.Error()
}
