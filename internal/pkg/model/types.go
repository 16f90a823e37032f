package model

import "fmt"

type EventType int

const (
	EventTypeClick                  EventType = 0
	EventTypeLongPress              EventType = 1
	EventTypePageStatus             EventType = 6
	EventTypeBlueLED                EventType = 8
	EventTypeRedLED                 EventType = 9
	EventTypeGreenLED               EventType = 10
	EventTypeLabel                  EventType = 11
	EventTypeTopLabel               EventType = 12
	EventTypeRGBLED                 EventType = 13
	EventTypeLED                    EventType = 14
	EventTypeValue                  EventType = 15
	EventTypeUnit                   EventType = 17
	EventTypeSensorValue            EventType = 18
	EventTypeSetPage                EventType = 20
	EventTypeBrightnessLargeDisplay EventType = 24
	EventTypeBrightnessMiniDisplay  EventType = 25
)

var eventTypeNames = map[EventType]string{
	EventTypeClick:                  "click",
	EventTypeLongPress:              "long_press",
	EventTypePageStatus:             "page_status",
	EventTypeBlueLED:                "blue_led",
	EventTypeRedLED:                 "red_led",
	EventTypeGreenLED:               "green_led",
	EventTypeLabel:                  "label",
	EventTypeTopLabel:               "top_label",
	EventTypeRGBLED:                 "rgb_led",
	EventTypeLED:                    "led",
	EventTypeValue:                  "value",
	EventTypeUnit:                   "unit",
	EventTypeSensorValue:            "sensor_value",
	EventTypeSetPage:                "set_page",
	EventTypeBrightnessLargeDisplay: "brightness_large_display",
	EventTypeBrightnessMiniDisplay:  "brightness_mini_display",
}

// Valid reports whether the code is one the firmware documents. Unknown codes are
// still decoded and written back unchanged.
func (e EventType) Valid() bool {
	_, ok := eventTypeNames[e]
	return ok
}

func (e EventType) String() string {
	if name, ok := eventTypeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event_type(%d)", int(e))
}

type ConnectorType int

const (
	ConnectorTypeNotConnected ConnectorType = 0
	ConnectorTypeBar          ConnectorType = 1
	ConnectorTypeDisplay      ConnectorType = 2
)

func (c ConnectorType) Valid() bool {
	return c >= ConnectorTypeNotConnected && c <= ConnectorTypeDisplay
}

func (c ConnectorType) String() string {
	switch c {
	case ConnectorTypeNotConnected:
		return "not_connected"
	case ConnectorTypeBar:
		return "bar"
	case ConnectorTypeDisplay:
		return "display"
	}
	return fmt.Sprintf("connector_type(%d)", int(c))
}

const (
	DefaultBrokerID = "ha-button-plus"
	DefaultWSPort   = 9001
)

// Connector is a physical expansion port on the base module.
type Connector struct {
	ID   int
	Type ConnectorType
}

// Topic binds one MQTT topic to the event it carries. BrokerID refers to a Broker
// of the same configuration by its BrokerID.
type Topic struct {
	BrokerID  string
	Topic     string
	Payload   string
	EventType EventType
}

// Broker is an MQTT server the device connects to by itself.
type Broker struct {
	BrokerID string
	URL      string
	Port     int
	WSPort   int
	Username string
	Password string
}

// RGBToInt packs three 8 bit channels into the 24 bit colour integer used for
// led colours on the wire.
func RGBToInt(red, green, blue uint8) int {
	return int(red)<<16 | int(green)<<8 | int(blue)
}

// IntToRGB splits a 24 bit colour integer into its channels.
func IntToRGB(color int) (red, green, blue uint8) {
	return uint8(color >> 16 & 0xFF), uint8(color >> 8 & 0xFF), uint8(color & 0xFF)
}
