// Package detection picks the configuration schema of a device from the firmware
// version it reports.
package detection

import (
	"encoding/json"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model/v107"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model/v112"
)

type decoder func(raw []byte) (model.DeviceConfiguration, error)

type generation struct {
	name   string
	since  model.Version
	decode decoder
}

// generations is ordered newest first. The first row whose threshold the
// firmware reaches decodes the document. 0.0.0-0 is the lowest semantic version,
// so the last row takes everything older than 1.12.0, pre-releases included.
var generations = []generation{
	{name: v112.Generation, since: model.MustParseVersion("1.12.0"), decode: decodeWith(v112.Decode)},
	{name: v107.Generation, since: model.MustParseVersion("0.0.0-0"), decode: decodeWith(v107.Decode)},
}

func decodeWith[T model.DeviceConfiguration](decode func([]byte) (T, error)) decoder {
	return func(raw []byte) (model.DeviceConfiguration, error) {
		cfg, err := decode(raw)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

// Parse decodes a configuration document with the schema of its firmware.
func Parse(raw []byte) (model.DeviceConfiguration, error) {
	gen, err := detect(raw)
	if err != nil {
		return nil, err
	}
	return gen.decode(raw)
}

// Generation names the schema Parse would use without decoding the document.
func Generation(raw []byte) (string, error) {
	gen, err := detect(raw)
	if err != nil {
		return "", err
	}
	return gen.name, nil
}

// Firmware reads info.firmware from a document.
func Firmware(raw []byte) (model.Version, error) {
	var header struct {
		Info map[string]json.RawMessage `json:"info"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return model.Version{}, &model.SchemaViolationError{Entity: "DeviceConfiguration", Reason: "expected a JSON object"}
	}
	if header.Info == nil {
		return model.Version{}, &model.SchemaViolationError{Entity: "DeviceConfiguration", Key: "info", Reason: "missing required key"}
	}
	value, ok := header.Info["firmware"]
	if !ok || string(value) == "null" {
		return model.Version{}, &model.SchemaViolationError{Entity: "Info", Key: "firmware", Reason: "missing required key"}
	}
	var firmware string
	if err := json.Unmarshal(value, &firmware); err != nil {
		return model.Version{}, &model.SchemaViolationError{Entity: "Info", Key: "firmware", Reason: err.Error()}
	}
	return model.ParseVersion(firmware)
}

func detect(raw []byte) (generation, error) {
	firmware, err := Firmware(raw)
	if err != nil {
		return generation{}, err
	}
	for _, gen := range generations {
		if firmware.AtLeast(gen.since) {
			return gen, nil
		}
	}
	return generation{}, &model.UnsupportedFirmwareError{
		Firmware: firmware.String(),
		Reason:   "older than every known generation",
	}
}
