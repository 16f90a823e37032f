package server

import (
	"encoding/json"
	"time"
)

type LabelRequest struct {
	Label string `json:"label"`
	// Top writes the small label above the button instead of the main one.
	Top bool `json:"top"`
}

type ConfigResponse struct {
	Generation string          `json:"generation"`
	Dirty      bool            `json:"dirty"`
	Config     json.RawMessage `json:"config"`
}

type ProvisionResponse struct {
	DeviceID     string `json:"device_id"`
	IPAddress    string `json:"ip_address"`
	Generation   string `json:"generation"`
	BrokerURL    string `json:"broker_url"`
	DeviceTopics int    `json:"device_topics"`
	Buttons      []int  `json:"buttons"`
	Dangling     int    `json:"dangling_topics"`
}

type BrightnessRequest struct {
	// Value is a percentage.
	Value int `json:"value"`
}

type PageRequest struct {
	Page int `json:"page"`
}

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ColorRequest needs both colours; a button has no way to keep one of them.
type ColorRequest struct {
	Front *RGB `json:"front"`
	Wall  *RGB `json:"wall"`
}

type ButtonResponse struct {
	ID        int    `json:"id"`
	Connector string `json:"connector"`
	Label     string `json:"label"`
	TopLabel  string `json:"top_label"`
	Front     RGB    `json:"front"`
	Wall      RGB    `json:"wall"`
	Topics    int    `json:"topics"`
}

type DeviceResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IPAddress  string    `json:"ip_address"`
	MACAddress string    `json:"mac_address"`
	Firmware   string    `json:"firmware"`
	Generation string    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BackupResponse struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	IPAddress  string    `json:"ip_address"`
	Generation string    `json:"generation"`
	Firmware   string    `json:"firmware"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}
