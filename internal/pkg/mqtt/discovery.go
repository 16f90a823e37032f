package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/provision"
)

const (
	discoveryPrefix = "homeassistant"
	manufacturer    = "Button+"
	labelMaxLength  = 50
	brightnessMax   = 100
)

type discovery struct {
	topic   string
	payload any
}

// RegisterDevice publishes Home Assistant discovery for every connected button:
// click and long press triggers plus label and top label text entities, and the
// display brightness numbers when the firmware has them. Nothing is published
// when the messages equal the ones last published for the device; entities that
// disappeared since then are removed.
func (s *service) RegisterDevice(ctx context.Context, cfg model.DeviceConfiguration) error {
	deviceID := cfg.Identifier()
	msgs := discoveryMessages(cfg)
	payloads := make(map[string]string, len(msgs))
	for i, msg := range msgs {
		payload, err := json.Marshal(msg.payload)
		if err != nil {
			return err
		}
		msgs[i].payload = payload
		payloads[msg.topic] = string(payload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.registered[deviceID]
	if maps.Equal(previous, payloads) {
		return nil
	}

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.publish(msg.topic, 1, true, msg.payload); err != nil {
			return err
		}
	}
	stale := lo.Filter(lo.Keys(previous), func(topic string, _ int) bool {
		_, ok := payloads[topic]
		return !ok
	})
	slices.Sort(stale)
	for _, topic := range stale {
		// an empty retained payload deletes the entity
		if err := s.publish(topic, 1, true, []byte{}); err != nil {
			return err
		}
	}
	s.registered[deviceID] = payloads
	s.logger.Info("registered device",
		zap.String("device_id", deviceID),
		zap.String("name", cfg.Name()),
		zap.Int("entities", len(msgs)),
		zap.Int("removed", len(stale)))
	return nil
}

func discoveryDevice(cfg model.DeviceConfiguration) model.DiscoveryDevice {
	return model.DiscoveryDevice{
		Name:             cfg.Name(),
		Identifiers:      []string{cfg.Identifier(), cfg.MACAddress()},
		Model:            "Base Module " + cfg.Generation(),
		Manufacturer:     manufacturer,
		SWVersion:        cfg.FirmwareVersion().String(),
		ConfigurationURL: "http://" + cfg.IPAddress(),
	}
}

func discoveryMessages(cfg model.DeviceConfiguration) []discovery {
	device := discoveryDevice(cfg)
	deviceID := cfg.Identifier()
	nodeID := slug.Make(deviceID)

	var out []discovery
	for _, button := range provision.ConnectedButtons(cfg) {
		id := button.ID()
		subtype := fmt.Sprintf("button_%d", id)

		triggers := []struct {
			suffix string
			kind   string
		}{
			{suffix: provision.ButtonClick, kind: "button_short_press"},
			{suffix: provision.ButtonLongPress, kind: "button_long_press"},
		}
		for _, trigger := range triggers {
			objectID := slug.Make(fmt.Sprintf("%s %s", subtype, trigger.suffix))
			out = append(out, discovery{
				topic: fmt.Sprintf("%s/device_automation/%s/%s/config", discoveryPrefix, nodeID, objectID),
				payload: model.TriggerMessage{
					AutomationType: "trigger",
					Topic:          provision.ButtonTopic(deviceID, id, trigger.suffix),
					Type:           trigger.kind,
					Subtype:        subtype,
					Payload:        provision.PressPayload,
					Device:         device,
				},
			})
		}

		labels := []struct {
			suffix string
			name   string
		}{
			{suffix: provision.ButtonLabel, name: fmt.Sprintf("Button %d label", id)},
			{suffix: provision.ButtonTopLabel, name: fmt.Sprintf("Button %d top label", id)},
		}
		for _, label := range labels {
			objectID := slug.Make(fmt.Sprintf("%s %s", subtype, label.suffix))
			out = append(out, discovery{
				topic: fmt.Sprintf("%s/text/%s/%s/config", discoveryPrefix, nodeID, objectID),
				payload: model.TextMessage{
					Name:         label.name,
					ID:           slug.Make(fmt.Sprintf("%s %s", deviceID, objectID)),
					CommandTopic: provision.ButtonTopic(deviceID, id, label.suffix),
					Retain:       true,
					Max:          labelMaxLength,
					Device:       device,
				},
			})
		}
	}

	if cfg.SupportsBrightness() {
		numbers := []struct {
			suffix string
			name   string
		}{
			{suffix: provision.BrightnessLarge, name: "Brightness large display"},
			{suffix: provision.BrightnessMini, name: "Brightness mini display"},
		}
		for _, number := range numbers {
			objectID := slug.Make(number.suffix)
			out = append(out, discovery{
				topic: fmt.Sprintf("%s/number/%s/%s/config", discoveryPrefix, nodeID, objectID),
				payload: model.NumberMessage{
					Name:         number.name,
					ID:           slug.Make(fmt.Sprintf("%s %s", deviceID, objectID)),
					CommandTopic: provision.DeviceTopic(deviceID, number.suffix),
					StateTopic:   provision.DeviceTopic(deviceID, number.suffix),
					Min:          0,
					Max:          brightnessMax,
					Unit:         "%",
					Icon:         "mdi:television-ambient-light",
					Retain:       true,
					Device:       device,
				},
			})
		}
	}
	return out
}
