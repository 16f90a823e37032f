// Package provision injects the Home Assistant broker and the topics the
// integration listens on into a device configuration before it is pushed back.
package provision

import (
	"errors"

	"github.com/samber/lo"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

var ErrNotButtonTopic = errors.New("not a button topic")

// localBrokers cannot be reached from the device itself.
var localBrokers = []string{"core-mosquitto", "127.0.0.1", "localhost"}

type Broker struct {
	Endpoint string
	Port     int
	Username string
	Password string
}

func (b Broker) URL() string {
	return "mqtt://" + b.Endpoint + "/"
}

// Result summarises what Provision added.
type Result struct {
	BrokerURL    string
	DeviceTopics int
	Buttons      []int
}

// Provision appends the broker, the device topics when the firmware supports
// them, and label, top label, click and long press topics for every connected
// button. Calling it twice on the same configuration duplicates everything.
func Provision(cfg model.DeviceConfiguration, broker Broker) Result {
	result := Result{BrokerURL: broker.URL()}
	cfg.SetBroker(result.BrokerURL, broker.Port, broker.Username, broker.Password)

	deviceID := cfg.Identifier()
	if cfg.SupportsBrightness() {
		for _, dt := range deviceTopics {
			cfg.AddTopic(DeviceTopic(deviceID, dt.suffix), dt.eventType)
		}
		result.DeviceTopics = len(deviceTopics)
	}

	for _, button := range ConnectedButtons(cfg) {
		for _, bt := range buttonTopics {
			button.AddTopic(ButtonTopic(deviceID, button.ID(), bt.suffix), bt.eventType, bt.payload)
		}
		result.Buttons = append(result.Buttons, button.ID())
	}
	return result
}

// ConnectedButtons keeps the buttons whose connector, ID/2, is a bar or a display.
func ConnectedButtons(cfg model.DeviceConfiguration) []model.Button {
	active := lo.Map(cfg.ConnectorsFor(model.ConnectorTypeDisplay, model.ConnectorTypeBar), func(c model.Connector, _ int) int {
		return c.ID
	})
	return lo.Filter(cfg.Buttons(), func(b model.Button, _ int) bool {
		return lo.Contains(active, b.ID()/2)
	})
}

// BrokerEndpoint swaps a broker host only reachable from this machine for the
// advertised host.
func BrokerEndpoint(configured, advertised string) string {
	if advertised != "" && lo.Contains(localBrokers, configured) {
		return advertised
	}
	return configured
}

// DanglingTopics lists topics whose broker id matches none of the configured
// brokers. The device silently ignores them.
func DanglingTopics(cfg model.DeviceConfiguration) []model.Topic {
	known := lo.SliceToMap(cfg.Brokers(), func(b model.Broker) (string, struct{}) {
		return b.BrokerID, struct{}{}
	})
	return lo.Filter(cfg.AllTopics(), func(t model.Topic, _ int) bool {
		_, ok := known[t.BrokerID]
		return !ok
	})
}
