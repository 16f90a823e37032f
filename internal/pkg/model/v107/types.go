// Package v107 is the configuration schema of firmware before 1.12. Its shared
// blocks (info, buttons, brokers, sensors and topics) are reused unchanged by
// later generations.
package v107

import "github.com/anicoll/buttonplus-integration/internal/pkg/model"

// Generation is the name of the schema decoded by this package.
const Generation = "1.07"

type Sensor struct {
	SensorID    int
	Description string
}

type Info struct {
	DeviceID     string
	MAC          string
	IPAddress    string
	Firmware     string
	LargeDisplay int
	Connectors   []model.Connector
	Sensors      []Sensor
}

type Core struct {
	Name                   string
	Location               string
	AutoBackup             bool
	BrightnessLargeDisplay int
	BrightnessMiniDisplay  int
	LEDColorFront          int
	LEDColorWall           int
	Color                  *int
	Topics                 []model.Topic
}

type MqttButton struct {
	ButtonID      int
	Label         string
	TopLabel      string
	LEDColorFront int
	LEDColorWall  int
	LongDelay     int
	LongRepeat    int
	Topics        []model.Topic
}

type MqttDisplay struct {
	X        int
	Y        int
	FontSize int
	Align    int
	Width    int
	Label    string
	Unit     string
	Round    int
	Topics   []model.Topic
}

// MqttSensor publishes the readings of a built in sensor every Interval seconds.
type MqttSensor struct {
	SensorID int
	Topic    model.Topic
	Interval int
}
