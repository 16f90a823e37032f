package v107

import (
	"slices"

	"github.com/samber/lo"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

var _ model.DeviceConfiguration = (*DeviceConfiguration)(nil)

// DeviceConfiguration is a decoded pre 1.12 configuration document.
type DeviceConfiguration struct {
	Common
	Core         Core
	MqttDisplays []MqttDisplay
}

// Decode parses one configuration document. Nothing is returned unless the whole
// document matches the schema.
func Decode(raw []byte) (*DeviceConfiguration, error) {
	cfg := &DeviceConfiguration{}
	if err := documentTable.Decode(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *DeviceConfiguration) UnmarshalJSON(raw []byte) error {
	return documentTable.Decode(raw, c)
}

func (c *DeviceConfiguration) MarshalJSON() ([]byte, error) {
	return documentTable.Encode(c)
}

func (c *DeviceConfiguration) Generation() string {
	return Generation
}

func (c *DeviceConfiguration) Name() string {
	if c.Core.Name == "" {
		return c.Info.DeviceID
	}
	return c.Core.Name
}

func (c *DeviceConfiguration) Location() string {
	return c.Core.Location
}

func (c *DeviceConfiguration) Topics() []model.Topic {
	return slices.Clone(c.Core.Topics)
}

func (c *DeviceConfiguration) AddTopic(topic string, eventType model.EventType) {
	c.Core.Topics = append(c.Core.Topics, NewTopic(topic, eventType))
	c.MarkDirty()
}

func (c *DeviceConfiguration) RemoveTopicFor(eventType model.EventType) {
	c.Core.Topics = WithoutEventType(c.Core.Topics, eventType)
	c.MarkDirty()
}

func (c *DeviceConfiguration) AllTopics() []model.Topic {
	displayTopics := lo.FlatMap(c.MqttDisplays, func(d MqttDisplay, _ int) []model.Topic {
		return d.Topics
	})
	return slices.Concat(c.Core.Topics, c.ButtonTopics(), displayTopics, c.SensorTopics())
}
