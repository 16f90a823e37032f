package v107

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/buttonplus-integration/internal/pkg/fixture"
	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
	"github.com/anicoll/buttonplus-integration/internal/pkg/wire"
)

func decodeFixture(t *testing.T) *DeviceConfiguration {
	t.Helper()
	cfg, err := Decode(fixture.V107)
	require.NoError(t, err)
	return cfg
}

// mutateFixture decodes the fixture into generic JSON, lets fn edit it and
// returns the re-encoded document.
func mutateFixture(t *testing.T, fn func(doc map[string]any)) []byte {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(fixture.V107, &doc))
	fn(doc)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestRoundTrip(t *testing.T) {
	cfg := decodeFixture(t)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, string(fixture.V107), string(out))
	assert.NoError(t, wire.CheckRoundTrip(fixture.V107, out))
	assert.False(t, cfg.Dirty())
}

func TestUnmarshalJSON(t *testing.T) {
	var cfg DeviceConfiguration
	require.NoError(t, json.Unmarshal(fixture.V107, &cfg))
	assert.Equal(t, "btn_4967c8", cfg.Identifier())
}

func TestButtons(t *testing.T) {
	cfg := decodeFixture(t)

	require.Len(t, cfg.MqttButtons, 8)
	first := cfg.MqttButtons[0]
	assert.Equal(t, "Btn 0", first.Label)
	assert.Equal(t, "Label", first.TopLabel)
	assert.Equal(t, 0, first.LEDColorFront)
	assert.Equal(t, 0, first.LEDColorWall)
	assert.Equal(t, 75, first.LongDelay)
	assert.Equal(t, 15, first.LongRepeat)
	assert.Equal(t, model.Topic{
		BrokerID:  "hassdev",
		Topic:     "buttonplus/btn_4967c8/bars/2/click",
		Payload:   "true",
		EventType: model.EventTypeClick,
	}, cfg.MqttButtons[2].Topics[0])
}

func TestDisplays(t *testing.T) {
	cfg := decodeFixture(t)

	require.Len(t, cfg.MqttDisplays, 2)
	display := cfg.MqttDisplays[0]
	assert.Equal(t, 0, display.X)
	assert.Equal(t, 0, display.Y)
	assert.Equal(t, 4, display.FontSize)
	assert.Equal(t, 0, display.Align)
	assert.Equal(t, 50, display.Width)
	assert.Equal(t, 0, display.Round)
	assert.Equal(t, "Amsterdam", display.Label)
	assert.Equal(t, "", display.Unit)
	assert.Equal(t, model.Topic{
		BrokerID:  "buttonplus",
		Topic:     "system/datetime/amsterdam",
		EventType: model.EventTypeValue,
	}, display.Topics[0])
	assert.Equal(t, "°C", cfg.MqttDisplays[1].Unit)
}

func TestBrokersAndSensors(t *testing.T) {
	cfg := decodeFixture(t)

	assert.Equal(t, []model.Broker{
		{BrokerID: "buttonplus", URL: "mqtt://mqtt.button.plus"},
		{BrokerID: "hassdev", URL: "mqtt://192.168.2.16/", Port: 1883, WSPort: 9001, Username: "koen", Password: "koen"},
	}, cfg.Brokers())

	require.Len(t, cfg.MqttSensors, 1)
	assert.Equal(t, MqttSensor{
		SensorID: 1,
		Interval: 10,
		Topic: model.Topic{
			BrokerID:  "buttonplus",
			Topic:     "button/btn_4967c8/temperature",
			EventType: model.EventTypeSensorValue,
		},
	}, cfg.MqttSensors[0])
}

func TestFacade(t *testing.T) {
	cfg := decodeFixture(t)

	assert.Equal(t, Generation, cfg.Generation())
	assert.Equal(t, "btn_4967c8", cfg.Name())
	assert.Equal(t, "btn_4967c8", cfg.Identifier())
	assert.Equal(t, "192.168.2.45", cfg.IPAddress())
	assert.Equal(t, "F4:12:FA:49:67:C8", cfg.MACAddress())
	assert.Equal(t, "Living room", cfg.Location())
	assert.Equal(t, model.Version{Major: 1, Minor: 7, Patch: 3}, cfg.FirmwareVersion())
	assert.False(t, cfg.SupportsBrightness())

	assert.Len(t, cfg.Connectors(), 4)
	assert.Equal(t, []model.Connector{{ID: 3, Type: model.ConnectorTypeDisplay}}, cfg.ConnectorsFor(model.ConnectorTypeDisplay))
	assert.Len(t, cfg.ConnectorsFor(model.ConnectorTypeBar, model.ConnectorTypeDisplay), 4)

	conn, ok := cfg.ConnectorFor(2)
	assert.True(t, ok)
	assert.Equal(t, model.ConnectorTypeBar, conn.Type)
	_, ok = cfg.ConnectorFor(9)
	assert.False(t, ok)

	assert.Len(t, cfg.AllTopics(), 4)
	assert.False(t, cfg.Dirty())
}

func TestNameFallsBackToIdentifier(t *testing.T) {
	cfg := decodeFixture(t)
	cfg.Core.Name = ""
	assert.Equal(t, "btn_4967c8", cfg.Name())

	cfg.Core.Name = "Hallway"
	assert.Equal(t, "Hallway", cfg.Name())
}

func TestButtonAddTopic(t *testing.T) {
	cfg := decodeFixture(t)

	buttons := cfg.Buttons()
	require.Len(t, buttons, 8)
	buttons[1].AddTopic("buttonplus/btn_4967c8/button/1/click", model.EventTypeClick, "press")

	assert.True(t, cfg.Dirty())
	assert.Equal(t, 1, buttons[1].ID())
	assert.Equal(t, "Btn 1", buttons[1].Label())
	assert.Equal(t, []model.Topic{{
		BrokerID:  model.DefaultBrokerID,
		Topic:     "buttonplus/btn_4967c8/button/1/click",
		Payload:   "press",
		EventType: model.EventTypeClick,
	}}, cfg.MqttButtons[1].Topics)
}

func TestButtonLEDColors(t *testing.T) {
	cfg := decodeFixture(t)
	button := cfg.Buttons()[2]

	front, wall := button.LEDColors()
	assert.Equal(t, cfg.MqttButtons[2].LEDColorFront, front)
	assert.Equal(t, cfg.MqttButtons[2].LEDColorWall, wall)
	assert.False(t, cfg.Dirty())

	button.SetLEDColors(model.RGBToInt(0xFF, 0xD3, 0x5F), 0x0000FF)
	assert.True(t, cfg.Dirty())
	assert.Equal(t, 16765791, cfg.MqttButtons[2].LEDColorFront)
	assert.Equal(t, 255, cfg.MqttButtons[2].LEDColorWall)

	out, err := cfg.MarshalJSON()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.EqualValues(t, 16765791, doc["mqttbuttons"].([]any)[2].(map[string]any)["ledcolorfront"])
}

func TestButtonConnectorMapping(t *testing.T) {
	cfg := &DeviceConfiguration{}
	cfg.Info.Connectors = []model.Connector{
		{ID: 0, Type: model.ConnectorTypeBar},
		{ID: 1, Type: model.ConnectorTypeDisplay},
	}
	for i := range 6 {
		cfg.MqttButtons = append(cfg.MqttButtons, MqttButton{ButtonID: i})
	}

	connected := lo.Filter(cfg.Buttons(), func(b model.Button, _ int) bool {
		_, ok := cfg.ConnectorFor(b.ID() / 2)
		return ok
	})
	ids := lo.Map(connected, func(b model.Button, _ int) int { return b.ID() })
	assert.Equal(t, []int{0, 1, 2, 3}, ids)
}

func TestCoreTopics(t *testing.T) {
	cfg := decodeFixture(t)

	cfg.AddTopic("a", model.EventTypeClick)
	cfg.AddTopic("b", model.EventTypeLabel)
	cfg.AddTopic("c", model.EventTypeClick)
	assert.True(t, cfg.Dirty())
	require.Len(t, cfg.Topics(), 3)

	cfg.RemoveTopicFor(model.EventTypeClick)
	assert.Equal(t, []model.Topic{{BrokerID: model.DefaultBrokerID, Topic: "b", EventType: model.EventTypeLabel}}, cfg.Topics())
}

func TestCoreTopicsOmittedWhenEmpty(t *testing.T) {
	tests := map[string]struct {
		topics []model.Topic
		want   int
	}{
		"no topics":  {topics: nil, want: -1},
		"empty list": {topics: []model.Topic{}, want: -1},
		"one topic":  {topics: []model.Topic{NewTopic("t", model.EventTypePageStatus)}, want: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			core := Core{Name: "n", Topics: tc.topics}
			out, err := CoreTable.Encode(&core)
			require.NoError(t, err)

			var doc map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(out, &doc))
			raw, ok := doc["topics"]
			if tc.want < 0 {
				assert.False(t, ok)
				assert.NotContains(t, doc, "color")
				return
			}
			var topics []any
			require.NoError(t, json.Unmarshal(raw, &topics))
			assert.Len(t, topics, tc.want)
		})
	}
}

func TestSetBroker(t *testing.T) {
	cfg := decodeFixture(t)

	cfg.SetBroker("mqtt://192.168.2.16/", 1883, "user", "secret")
	cfg.SetBroker("mqtt://192.168.2.16/", 1883, "user", "secret")

	assert.True(t, cfg.Dirty())
	brokers := cfg.Brokers()
	require.Len(t, brokers, 4)
	assert.Equal(t, model.Broker{
		BrokerID: model.DefaultBrokerID,
		URL:      "mqtt://192.168.2.16/",
		Port:     1883,
		WSPort:   model.DefaultWSPort,
		Username: "user",
		Password: "secret",
	}, brokers[3])
}

func TestDecodeSchemaViolations(t *testing.T) {
	tests := map[string]struct {
		mutate func(doc map[string]any)
		entity string
		key    string
	}{
		"missing core": {
			mutate: func(doc map[string]any) { delete(doc, "core") },
			entity: "DeviceConfiguration", key: "core",
		},
		"button without longdelay": {
			mutate: func(doc map[string]any) {
				delete(doc["mqttbuttons"].([]any)[3].(map[string]any), "longdelay")
			},
			entity: "MqttButton", key: "longdelay",
		},
		"string port": {
			mutate: func(doc map[string]any) {
				doc["mqttbrokers"].([]any)[0].(map[string]any)["port"] = "1883"
			},
			entity: "MqttBroker", key: "port",
		},
		"sensor topic without eventtype": {
			mutate: func(doc map[string]any) {
				topic := doc["mqttsensors"].([]any)[0].(map[string]any)["topic"].(map[string]any)
				delete(topic, "eventtype")
			},
			entity: "Topic", key: "eventtype",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Decode(mutateFixture(t, tc.mutate))
			assert.Nil(t, cfg)
			require.ErrorIs(t, err, model.ErrSchemaViolation)

			var violation *model.SchemaViolationError
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tc.entity, violation.Entity)
			assert.Equal(t, tc.key, violation.Key)
		})
	}
}

func TestUnknownEnumCodesRoundTrip(t *testing.T) {
	raw := mutateFixture(t, func(doc map[string]any) {
		doc["info"].(map[string]any)["connectors"].([]any)[0].(map[string]any)["type"] = 7
		doc["mqttsensors"].([]any)[0].(map[string]any)["topic"].(map[string]any)["eventtype"] = 42
	})

	cfg, err := Decode(raw)
	require.NoError(t, err)
	assert.False(t, cfg.Info.Connectors[0].Type.Valid())
	assert.False(t, cfg.MqttSensors[0].Topic.EventType.Valid())

	out, err := cfg.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestMissingTopicsStayMissing(t *testing.T) {
	raw := mutateFixture(t, func(doc map[string]any) {
		delete(doc["mqttbuttons"].([]any)[0].(map[string]any), "topics")
		delete(doc["mqttdisplays"].([]any)[0].(map[string]any), "topics")
	})

	cfg, err := Decode(raw)
	require.NoError(t, err)
	assert.Nil(t, cfg.MqttButtons[0].Topics)
	assert.Nil(t, cfg.MqttDisplays[0].Topics)

	out, err := cfg.MarshalJSON()
	require.NoError(t, err)
	assert.NoError(t, wire.CheckRoundTrip(raw, out))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.NotContains(t, doc["mqttbuttons"].([]any)[0], "topics")
	assert.Contains(t, doc["mqttbuttons"].([]any)[1], "topics")

	first := cfg.MqttButtons[0].ButtonID
	btn, ok := lo.Find(cfg.Buttons(), func(b model.Button) bool { return b.ID() == first })
	require.True(t, ok)
	btn.AddTopic("buttonplus/btn_4967c8/button/0/click", model.EventTypeClick, "press")
	out, err = cfg.MarshalJSON()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Len(t, doc["mqttbuttons"].([]any)[0].(map[string]any)["topics"], 1)
}
