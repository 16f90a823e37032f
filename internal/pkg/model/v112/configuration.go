// Package v112 is the configuration schema of firmware 1.12 and later. Only the
// core and display blocks changed; everything else is the v107 schema.
package v112

import (
	"slices"

	"github.com/samber/lo"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model/v107"
	"github.com/anicoll/buttonplus-integration/internal/pkg/wire"
)

const Generation = "1.12"

var _ model.DeviceConfiguration = (*DeviceConfiguration)(nil)

// Core replaces the per display brightness and led colours of v107 with a single
// brightness and colour.
type Core struct {
	Name       string
	Location   string
	AutoBackup bool
	Brightness int
	Color      int
	StatusBar  int
	Topics     []model.Topic
}

type MqttDisplay struct {
	X        int
	Y        int
	BoxType  int
	FontSize int
	Align    int
	Width    int
	Label    string
	Unit     string
	Round    int
	Page     int
	Topics   []model.Topic
}

var CoreTable = &wire.Table[Core]{
	Entity: "Core",
	Fields: []wire.Field[Core]{
		wire.Scalar("name", func(c *Core) *string { return &c.Name }),
		wire.Scalar("location", func(c *Core) *string { return &c.Location }),
		wire.Scalar("autobackup", func(c *Core) *bool { return &c.AutoBackup }),
		wire.Scalar("brightness", func(c *Core) *int { return &c.Brightness }),
		wire.Scalar("color", func(c *Core) *int { return &c.Color }),
		wire.Scalar("statusbar", func(c *Core) *int { return &c.StatusBar }),
		wire.List("topics", v107.TopicTable, func(c *Core) *[]model.Topic { return &c.Topics }),
	},
}

var DisplayTable = &wire.Table[MqttDisplay]{
	Entity: "MqttDisplay",
	Fields: []wire.Field[MqttDisplay]{
		wire.Scalar("x", func(d *MqttDisplay) *int { return &d.X }),
		wire.Scalar("y", func(d *MqttDisplay) *int { return &d.Y }),
		wire.Scalar("boxtype", func(d *MqttDisplay) *int { return &d.BoxType }),
		wire.Scalar("fontsize", func(d *MqttDisplay) *int { return &d.FontSize }),
		wire.Scalar("align", func(d *MqttDisplay) *int { return &d.Align }),
		wire.Scalar("width", func(d *MqttDisplay) *int { return &d.Width }),
		wire.Scalar("label", func(d *MqttDisplay) *string { return &d.Label }),
		wire.Scalar("unit", func(d *MqttDisplay) *string { return &d.Unit }),
		wire.Scalar("round", func(d *MqttDisplay) *int { return &d.Round }),
		wire.Scalar("page", func(d *MqttDisplay) *int { return &d.Page }),
		wire.List("topics", v107.TopicTable, func(d *MqttDisplay) *[]model.Topic { return &d.Topics }),
	},
}

var documentTable = &wire.Table[DeviceConfiguration]{
	Entity: "DeviceConfiguration",
	Fields: []wire.Field[DeviceConfiguration]{
		wire.Object("info", v107.InfoTable, func(c *DeviceConfiguration) *v107.Info { return &c.Info }),
		wire.Object("core", CoreTable, func(c *DeviceConfiguration) *Core { return &c.Core }),
		wire.List("mqttbuttons", v107.ButtonTable, func(c *DeviceConfiguration) *[]v107.MqttButton { return &c.MqttButtons }),
		wire.List("mqttdisplays", DisplayTable, func(c *DeviceConfiguration) *[]MqttDisplay { return &c.MqttDisplays }),
		wire.List("mqttbrokers", v107.BrokerTable, func(c *DeviceConfiguration) *[]model.Broker { return &c.MqttBrokers }),
		wire.List("mqttsensors", v107.MqttSensorTable, func(c *DeviceConfiguration) *[]v107.MqttSensor { return &c.MqttSensors }),
	},
}

// DeviceConfiguration is a decoded 1.12+ configuration document.
type DeviceConfiguration struct {
	v107.Common
	Core         Core
	MqttDisplays []MqttDisplay
}

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
	c.Core.Topics = append(c.Core.Topics, v107.NewTopic(topic, eventType))
	c.MarkDirty()
}

func (c *DeviceConfiguration) RemoveTopicFor(eventType model.EventType) {
	c.Core.Topics = v107.WithoutEventType(c.Core.Topics, eventType)
	c.MarkDirty()
}

func (c *DeviceConfiguration) AllTopics() []model.Topic {
	displayTopics := lo.FlatMap(c.MqttDisplays, func(d MqttDisplay, _ int) []model.Topic {
		return d.Topics
	})
	return slices.Concat(c.Core.Topics, c.ButtonTopics(), displayTopics, c.SensorTopics())
}
