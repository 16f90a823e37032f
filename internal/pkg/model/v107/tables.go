package v107

import (
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/wire"
)

var ConnectorTable = &wire.Table[model.Connector]{
	Entity: "Connector",
	Fields: []wire.Field[model.Connector]{
		wire.Scalar("id", func(c *model.Connector) *int { return &c.ID }),
		wire.Scalar("type", func(c *model.Connector) *model.ConnectorType { return &c.Type }),
	},
}

var SensorTable = &wire.Table[Sensor]{
	Entity: "Sensor",
	Fields: []wire.Field[Sensor]{
		wire.Scalar("sensorid", func(s *Sensor) *int { return &s.SensorID }),
		wire.Scalar("description", func(s *Sensor) *string { return &s.Description }),
	},
}

var InfoTable = &wire.Table[Info]{
	Entity: "Info",
	Fields: []wire.Field[Info]{
		wire.Scalar("id", func(i *Info) *string { return &i.DeviceID }),
		wire.Scalar("mac", func(i *Info) *string { return &i.MAC }),
		wire.Scalar("ipaddress", func(i *Info) *string { return &i.IPAddress }),
		wire.Scalar("firmware", func(i *Info) *string { return &i.Firmware }),
		wire.Scalar("largedisplay", func(i *Info) *int { return &i.LargeDisplay }),
		wire.List("connectors", ConnectorTable, func(i *Info) *[]model.Connector { return &i.Connectors }),
		wire.List("sensors", SensorTable, func(i *Info) *[]Sensor { return &i.Sensors }),
	},
}

var TopicTable = &wire.Table[model.Topic]{
	Entity: "Topic",
	Fields: []wire.Field[model.Topic]{
		wire.Scalar("brokerid", func(t *model.Topic) *string { return &t.BrokerID }),
		wire.Scalar("topic", func(t *model.Topic) *string { return &t.Topic }),
		wire.Scalar("payload", func(t *model.Topic) *string { return &t.Payload }),
		wire.Scalar("eventtype", func(t *model.Topic) *model.EventType { return &t.EventType }),
	},
}

// CoreTable leaves topics out when there are none; the firmware writes it that way.
var CoreTable = &wire.Table[Core]{
	Entity: "Core",
	Fields: []wire.Field[Core]{
		wire.Scalar("name", func(c *Core) *string { return &c.Name }),
		wire.Scalar("location", func(c *Core) *string { return &c.Location }),
		wire.Scalar("autobackup", func(c *Core) *bool { return &c.AutoBackup }),
		wire.Scalar("brightnesslargedisplay", func(c *Core) *int { return &c.BrightnessLargeDisplay }),
		wire.Scalar("brightnessminidisplay", func(c *Core) *int { return &c.BrightnessMiniDisplay }),
		wire.Scalar("ledcolorfront", func(c *Core) *int { return &c.LEDColorFront }),
		wire.Scalar("ledcolorwall", func(c *Core) *int { return &c.LEDColorWall }),
		wire.Nullable("color", func(c *Core) **int { return &c.Color }),
		wire.List("topics", TopicTable, func(c *Core) *[]model.Topic { return &c.Topics }, wire.Optional(), wire.OmitEmpty()),
	},
}

// Buttons and displays written by older firmware may carry no topics key at all;
// it stays absent on the way back.
var ButtonTable = &wire.Table[MqttButton]{
	Entity: "MqttButton",
	Fields: []wire.Field[MqttButton]{
		wire.Scalar("id", func(b *MqttButton) *int { return &b.ButtonID }),
		wire.Scalar("label", func(b *MqttButton) *string { return &b.Label }),
		wire.Scalar("toplabel", func(b *MqttButton) *string { return &b.TopLabel }),
		wire.Scalar("ledcolorfront", func(b *MqttButton) *int { return &b.LEDColorFront }),
		wire.Scalar("ledcolorwall", func(b *MqttButton) *int { return &b.LEDColorWall }),
		wire.Scalar("longdelay", func(b *MqttButton) *int { return &b.LongDelay }),
		wire.Scalar("longrepeat", func(b *MqttButton) *int { return &b.LongRepeat }),
		wire.List("topics", TopicTable, func(b *MqttButton) *[]model.Topic { return &b.Topics }, wire.OmitAbsent()),
	},
}

var DisplayTable = &wire.Table[MqttDisplay]{
	Entity: "MqttDisplay",
	Fields: []wire.Field[MqttDisplay]{
		wire.Scalar("x", func(d *MqttDisplay) *int { return &d.X }),
		wire.Scalar("y", func(d *MqttDisplay) *int { return &d.Y }),
		wire.Scalar("fontsize", func(d *MqttDisplay) *int { return &d.FontSize }),
		wire.Scalar("align", func(d *MqttDisplay) *int { return &d.Align }),
		wire.Scalar("width", func(d *MqttDisplay) *int { return &d.Width }),
		wire.Scalar("label", func(d *MqttDisplay) *string { return &d.Label }),
		wire.Scalar("unit", func(d *MqttDisplay) *string { return &d.Unit }),
		wire.Scalar("round", func(d *MqttDisplay) *int { return &d.Round }),
		wire.List("topics", TopicTable, func(d *MqttDisplay) *[]model.Topic { return &d.Topics }, wire.OmitAbsent()),
	},
}

var BrokerTable = &wire.Table[model.Broker]{
	Entity: "MqttBroker",
	Fields: []wire.Field[model.Broker]{
		wire.Scalar("brokerid", func(b *model.Broker) *string { return &b.BrokerID }),
		wire.Scalar("url", func(b *model.Broker) *string { return &b.URL }),
		wire.Scalar("port", func(b *model.Broker) *int { return &b.Port }),
		wire.Scalar("wsport", func(b *model.Broker) *int { return &b.WSPort }),
		wire.Scalar("username", func(b *model.Broker) *string { return &b.Username }),
		wire.Scalar("password", func(b *model.Broker) *string { return &b.Password }),
	},
}

var MqttSensorTable = &wire.Table[MqttSensor]{
	Entity: "MqttSensor",
	Fields: []wire.Field[MqttSensor]{
		wire.Scalar("sensorid", func(s *MqttSensor) *int { return &s.SensorID }),
		wire.Object("topic", TopicTable, func(s *MqttSensor) *model.Topic { return &s.Topic }),
		wire.Scalar("interval", func(s *MqttSensor) *int { return &s.Interval }),
	},
}

var documentTable = &wire.Table[DeviceConfiguration]{
	Entity: "DeviceConfiguration",
	Fields: []wire.Field[DeviceConfiguration]{
		wire.Object("info", InfoTable, func(c *DeviceConfiguration) *Info { return &c.Info }),
		wire.Object("core", CoreTable, func(c *DeviceConfiguration) *Core { return &c.Core }),
		wire.List("mqttbuttons", ButtonTable, func(c *DeviceConfiguration) *[]MqttButton { return &c.MqttButtons }),
		wire.List("mqttdisplays", DisplayTable, func(c *DeviceConfiguration) *[]MqttDisplay { return &c.MqttDisplays }),
		wire.List("mqttbrokers", BrokerTable, func(c *DeviceConfiguration) *[]model.Broker { return &c.MqttBrokers }),
		wire.List("mqttsensors", MqttSensorTable, func(c *DeviceConfiguration) *[]MqttSensor { return &c.MqttSensors }),
	},
}
