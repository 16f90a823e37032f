package provision

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

const topicRoot = "buttonplus"

// Button topic suffixes.
const (
	ButtonLabel     = "label"
	ButtonTopLabel  = "top_label"
	ButtonClick     = "click"
	ButtonLongPress = "long_press"
)

// Device topic suffixes.
const (
	BrightnessLarge = "brightness/large"
	BrightnessMini  = "brightness/mini"
	PageStatus      = "page/status"
	PageSet         = "page/set"
)

// PressPayload is what the device publishes on click and long press topics.
const PressPayload = "press"

type topicSpec struct {
	suffix    string
	eventType model.EventType
	payload   string
}

var deviceTopics = []topicSpec{
	{suffix: BrightnessLarge, eventType: model.EventTypeBrightnessLargeDisplay},
	{suffix: BrightnessMini, eventType: model.EventTypeBrightnessMiniDisplay},
	{suffix: PageStatus, eventType: model.EventTypePageStatus},
	{suffix: PageSet, eventType: model.EventTypeSetPage},
}

var buttonTopics = []topicSpec{
	{suffix: ButtonLabel, eventType: model.EventTypeLabel},
	{suffix: ButtonTopLabel, eventType: model.EventTypeTopLabel},
	{suffix: ButtonClick, eventType: model.EventTypeClick, payload: PressPayload},
	{suffix: ButtonLongPress, eventType: model.EventTypeLongPress, payload: PressPayload},
}

// DeviceTopic returns buttonplus/{deviceID}/{suffix}.
func DeviceTopic(deviceID, suffix string) string {
	return strings.Join([]string{topicRoot, deviceID, suffix}, "/")
}

// ButtonTopic returns buttonplus/{deviceID}/button/{buttonID}/{suffix}.
func ButtonTopic(deviceID string, buttonID int, suffix string) string {
	return DeviceTopic(deviceID, fmt.Sprintf("button/%d/%s", buttonID, suffix))
}

// ButtonWildcard matches suffix for every button of a device.
func ButtonWildcard(deviceID, suffix string) string {
	return DeviceTopic(deviceID, "button/+/"+suffix)
}

// ParseButtonTopic is the inverse of ButtonTopic.
func ParseButtonTopic(topic string) (deviceID string, buttonID int, suffix string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != topicRoot || parts[2] != "button" {
		return "", 0, "", fmt.Errorf("%w: %q", ErrNotButtonTopic, topic)
	}
	buttonID, err = strconv.Atoi(parts[3])
	if err != nil || buttonID < 0 {
		return "", 0, "", fmt.Errorf("%w: %q", ErrNotButtonTopic, topic)
	}
	return parts[1], buttonID, parts[4], nil
}
