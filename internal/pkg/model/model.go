package model

var brightnessSince = MustParseVersion("1.11")

// SupportsBrightness reports whether firmware accepts the display brightness
// topics.
func SupportsBrightness(firmware Version) bool {
	return firmware.AtLeast(brightnessSince)
}

// Button is one physical button. Buttons come in pairs per connector: the connector
// of a button is ID()/2.
type Button interface {
	ID() int
	Label() string
	TopLabel() string
	// LEDColors are 24 bit RGB integers, see IntToRGB.
	LEDColors() (front, wall int)
	SetLEDColors(front, wall int)
	Topics() []Topic
	AddTopic(topic string, eventType EventType, payload string)
}

// DeviceConfiguration is the generation independent view of a device's
// configuration. Every firmware generation implements it, so callers never branch
// on the wire format.
type DeviceConfiguration interface {
	// Generation names the wire schema the configuration was decoded with.
	Generation() string

	// Name falls back to Identifier when the device has no name.
	Name() string
	Identifier() string
	IPAddress() string
	MACAddress() string
	Location() string
	// FirmwareVersion is the zero Version when the firmware string does not parse.
	FirmwareVersion() Version
	SupportsBrightness() bool

	Connectors() []Connector
	// ConnectorsFor keeps device order.
	ConnectorsFor(types ...ConnectorType) []Connector
	ConnectorFor(id int) (Connector, bool)

	Buttons() []Button

	// Topics are the device level topics of the core block.
	Topics() []Topic
	AddTopic(topic string, eventType EventType)
	// RemoveTopicFor drops every device level topic with the event type.
	RemoveTopicFor(eventType EventType)
	// AllTopics lists device, button, display and sensor topics.
	AllTopics() []Topic

	// SetBroker appends a broker with DefaultBrokerID. Existing brokers are kept.
	SetBroker(url string, port int, username, password string)
	Brokers() []Broker

	// Dirty reports whether a mutator ran since decoding.
	Dirty() bool

	MarshalJSON() ([]byte, error)
}
