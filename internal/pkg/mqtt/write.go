package mqtt

import (
	"errors"
	"fmt"
	"strconv"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/provision"
)

var (
	ErrUnknownDisplay       = errors.New("unknown display")
	ErrBrightnessOutOfRange = errors.New("brightness must be between 0 and 100")
	ErrInvalidPage          = errors.New("page must not be negative")
)

// Display selects which brightness topic is written.
type Display string

const (
	DisplayLarge Display = "large"
	DisplayMini  Display = "mini"
)

// ButtonEvent is a click or long press reported by a device.
type ButtonEvent struct {
	DeviceID  string
	ButtonID  int
	EventType model.EventType
	Payload   string
}

// PublishLabel sets the main label of a button. Labels are retained so the
// device picks them up after a reboot.
func (s *service) PublishLabel(deviceID string, buttonID int, label string) error {
	return s.publish(provision.ButtonTopic(deviceID, buttonID, provision.ButtonLabel), 0, true, label)
}

func (s *service) PublishTopLabel(deviceID string, buttonID int, label string) error {
	return s.publish(provision.ButtonTopic(deviceID, buttonID, provision.ButtonTopLabel), 0, true, label)
}

// PublishBrightness sets the brightness of a display in percent.
func (s *service) PublishBrightness(deviceID string, display Display, value int) error {
	if value < 0 || value > brightnessMax {
		return fmt.Errorf("%w: %d", ErrBrightnessOutOfRange, value)
	}
	var suffix string
	switch display {
	case DisplayLarge:
		suffix = provision.BrightnessLarge
	case DisplayMini:
		suffix = provision.BrightnessMini
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDisplay, display)
	}
	return s.publish(provision.DeviceTopic(deviceID, suffix), 0, true, strconv.Itoa(value))
}

// SetPage switches the page shown on the device displays.
func (s *service) SetPage(deviceID string, page int) error {
	if page < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	return s.publish(provision.DeviceTopic(deviceID, provision.PageSet), 0, false, strconv.Itoa(page))
}

// SubscribeButtons calls handler for every click and long press of the device.
func (s *service) SubscribeButtons(deviceID string, handler func(ButtonEvent)) error {
	events := map[string]model.EventType{
		provision.ButtonClick:     model.EventTypeClick,
		provision.ButtonLongPress: model.EventTypeLongPress,
	}
	for suffix, eventType := range events {
		callback := func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
			device, buttonID, _, err := provision.ParseButtonTopic(msg.Topic())
			if err != nil {
				s.logger.Warn("ignoring message", zap.String("topic", msg.Topic()), zap.Error(err))
				return
			}
			handler(ButtonEvent{
				DeviceID:  device,
				ButtonID:  buttonID,
				EventType: eventType,
				Payload:   string(msg.Payload()),
			})
		}
		topic := provision.ButtonWildcard(deviceID, suffix)
		token := s.client.Subscribe(topic, 0, callback)
		if !token.WaitTimeout(s.timeout) {
			return fmt.Errorf("subscribe %s: %w", topic, ErrTimeout)
		}
		if err := token.Error(); err != nil {
			return err
		}
		s.logger.Info("subscribed to button events", zap.String("topic", topic))
	}
	return nil
}
