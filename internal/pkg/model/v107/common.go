package v107

import (
	"slices"

	"github.com/samber/lo"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

// Common holds the blocks every generation shares and implements the part of
// model.DeviceConfiguration that only depends on them.
type Common struct {
	Info        Info
	MqttButtons []MqttButton
	MqttBrokers []model.Broker
	MqttSensors []MqttSensor

	dirty bool
}

// MarkDirty records that the configuration must be written back to the device.
func (c *Common) MarkDirty() {
	c.dirty = true
}

func (c *Common) Dirty() bool {
	return c.dirty
}

func (c *Common) Identifier() string {
	return c.Info.DeviceID
}

func (c *Common) IPAddress() string {
	return c.Info.IPAddress
}

func (c *Common) MACAddress() string {
	return c.Info.MAC
}

func (c *Common) FirmwareVersion() model.Version {
	v, err := model.ParseVersion(c.Info.Firmware)
	if err != nil {
		return model.Version{}
	}
	return v
}

func (c *Common) SupportsBrightness() bool {
	return model.SupportsBrightness(c.FirmwareVersion())
}

func (c *Common) Connectors() []model.Connector {
	return slices.Clone(c.Info.Connectors)
}

func (c *Common) ConnectorsFor(types ...model.ConnectorType) []model.Connector {
	return lo.Filter(c.Info.Connectors, func(conn model.Connector, _ int) bool {
		return lo.Contains(types, conn.Type)
	})
}

func (c *Common) ConnectorFor(id int) (model.Connector, bool) {
	return lo.Find(c.Info.Connectors, func(conn model.Connector) bool {
		return conn.ID == id
	})
}

func (c *Common) Buttons() []model.Button {
	buttons := make([]model.Button, 0, len(c.MqttButtons))
	for i := range c.MqttButtons {
		buttons = append(buttons, &button{owner: c, index: i})
	}
	return buttons
}

func (c *Common) SetBroker(url string, port int, username, password string) {
	c.MqttBrokers = append(c.MqttBrokers, model.Broker{
		BrokerID: model.DefaultBrokerID,
		URL:      url,
		Port:     port,
		WSPort:   model.DefaultWSPort,
		Username: username,
		Password: password,
	})
	c.MarkDirty()
}

func (c *Common) Brokers() []model.Broker {
	return slices.Clone(c.MqttBrokers)
}

func (c *Common) ButtonTopics() []model.Topic {
	return lo.FlatMap(c.MqttButtons, func(b MqttButton, _ int) []model.Topic {
		return b.Topics
	})
}

func (c *Common) SensorTopics() []model.Topic {
	return lo.Map(c.MqttSensors, func(s MqttSensor, _ int) model.Topic {
		return s.Topic
	})
}

// button is a live view of one entry of Common.MqttButtons.
type button struct {
	owner *Common
	index int
}

func (b *button) data() *MqttButton {
	return &b.owner.MqttButtons[b.index]
}

func (b *button) ID() int {
	return b.data().ButtonID
}

func (b *button) Label() string {
	return b.data().Label
}

func (b *button) TopLabel() string {
	return b.data().TopLabel
}

func (b *button) LEDColors() (front, wall int) {
	data := b.data()
	return data.LEDColorFront, data.LEDColorWall
}

func (b *button) SetLEDColors(front, wall int) {
	data := b.data()
	data.LEDColorFront = front
	data.LEDColorWall = wall
	b.owner.MarkDirty()
}

func (b *button) Topics() []model.Topic {
	return slices.Clone(b.data().Topics)
}

func (b *button) AddTopic(topic string, eventType model.EventType, payload string) {
	data := b.data()
	data.Topics = append(data.Topics, model.Topic{
		BrokerID:  model.DefaultBrokerID,
		Topic:     topic,
		Payload:   payload,
		EventType: eventType,
	})
	b.owner.MarkDirty()
}

// NewTopic builds a device level topic bound to the default broker.
func NewTopic(topic string, eventType model.EventType) model.Topic {
	return model.Topic{
		BrokerID:  model.DefaultBrokerID,
		Topic:     topic,
		Payload:   "",
		EventType: eventType,
	}
}

// WithoutEventType drops every topic carrying eventType.
func WithoutEventType(topics []model.Topic, eventType model.EventType) []model.Topic {
	return lo.Reject(topics, func(t model.Topic, _ int) bool {
		return t.EventType == eventType
	})
}
