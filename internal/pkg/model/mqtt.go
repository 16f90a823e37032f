package model

// DiscoveryDevice is the device block shared by every Home Assistant discovery
// message of one Button+.
type DiscoveryDevice struct {
	Name             string   `json:"name"`
	Identifiers      []string `json:"identifiers"`
	Model            string   `json:"model"`
	Manufacturer     string   `json:"manufacturer"`
	SWVersion        string   `json:"sw_version,omitempty"`
	ConfigurationURL string   `json:"configuration_url,omitempty"`
}

// TriggerMessage announces a device trigger, used for click and long press.
type TriggerMessage struct {
	AutomationType string          `json:"automation_type"`
	Topic          string          `json:"topic"`
	Type           string          `json:"type"`
	Subtype        string          `json:"subtype"`
	Payload        string          `json:"payload"`
	Device         DiscoveryDevice `json:"device"`
}

// TextMessage announces a text entity, used for button labels.
type TextMessage struct {
	Name         string          `json:"name"`
	ID           string          `json:"unique_id"`
	CommandTopic string          `json:"command_topic"`
	Retain       bool            `json:"retain"`
	Max          int             `json:"max"`
	Device       DiscoveryDevice `json:"device"`
}

// NumberMessage announces a number entity, used for display brightness.
type NumberMessage struct {
	Name         string          `json:"name"`
	ID           string          `json:"unique_id"`
	CommandTopic string          `json:"command_topic"`
	StateTopic   string          `json:"state_topic,omitempty"`
	Min          int             `json:"min"`
	Max          int             `json:"max"`
	Unit         string          `json:"unit_of_measurement,omitempty"`
	Icon         string          `json:"icon,omitempty"`
	Retain       bool            `json:"retain"`
	Device       DiscoveryDevice `json:"device"`
}
