package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/k3vmcd/tirelinc/config"
	"github.com/k3vmcd/tirelinc/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTService owns the broker connection shared with the BLE gateway. Inbound
// it receives raw notification frames, motion switch changes and rotation
// commands; outbound it publishes per-position readings, availability, the
// position map and the active request cadence for the host to render.
type MQTTService struct {
	config *config.Config
	client mqtt.Client
	logger *zap.Logger
}

// NewMQTTService connects to the broker with retry
func NewMQTTService(cfg *config.Config, logger *zap.Logger) (*MQTTService, error) {
	service := &MQTTService{
		config: cfg,
		logger: logger,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(true)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.MQTTBroker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Error("MQTT connection lost", zap.Error(err))
	}

	service.client = mqtt.NewClient(opts)

	maxRetries := 5
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		token := service.client.Connect()
		if token.Wait() && token.Error() == nil {
			err = nil
			break
		}
		err = token.Error()

		logger.Warn("Failed to connect to MQTT broker",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker after %d attempts: %w", maxRetries, err)
	}

	return service, nil
}

// SubscribeRawFrames delivers each notification's raw bytes as published by
// the gateway. The payload is the frame itself, no envelope.
func (m *MQTTService) SubscribeRawFrames(handler func([]byte)) error {
	token := m.client.Subscribe(m.config.RawFrameTopic, 1, func(client mqtt.Client, msg mqtt.Message) {
		frame := make([]byte, len(msg.Payload()))
		copy(frame, msg.Payload())
		handler(frame)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", m.config.RawFrameTopic, token.Error())
	}
	m.logger.Info("Subscribed to raw frame topic", zap.String("topic", m.config.RawFrameTopic))
	return nil
}

// SubscribeMotion delivers motion switch changes. The switch entity owns the
// debouncing; anything that parses as true means the vehicle is moving.
func (m *MQTTService) SubscribeMotion(handler func(bool)) error {
	token := m.client.Subscribe(m.config.MotionTopic, 1, func(client mqtt.Client, msg mqtt.Message) {
		state := strings.TrimSpace(strings.ToUpper(string(msg.Payload())))
		handler(state == "ON" || state == "TRUE" || state == "1")
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", m.config.MotionTopic, token.Error())
	}
	m.logger.Info("Subscribed to motion topic", zap.String("topic", m.config.MotionTopic))
	return nil
}

// SubscribeRotation delivers rotation pattern selections by name.
func (m *MQTTService) SubscribeRotation(handler func(string)) error {
	token := m.client.Subscribe(m.config.RotationTopic, 1, func(client mqtt.Client, msg mqtt.Message) {
		handler(strings.TrimSpace(string(msg.Payload())))
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", m.config.RotationTopic, token.Error())
	}
	m.logger.Info("Subscribed to rotation topic", zap.String("topic", m.config.RotationTopic))
	return nil
}

// PublishPositionReading publishes a reading under its tire position.
func (m *MQTTService) PublishPositionReading(position int, positionName string, reading *models.Reading) {
	base := fmt.Sprintf("%s/tire/%d", m.config.BaseTopic, position)
	m.publish(base+"/pressure", fmt.Sprintf("%.1f", reading.Pressure), true)
	m.publish(base+"/temperature", fmt.Sprintf("%d", reading.Temperature), true)
	m.publish(base+"/alert", onOff(reading.AlertActive()), true)
	m.publish(base+"/low_battery", onOff(reading.LowBattery()), true)
	m.publish(base+"/sensor_id", reading.SensorID.String(), true)
	m.publish(base+"/name", positionName, true)
	m.PublishPositionAvailability(position, true)
}

// PublishSensorReading publishes a reading for a sensor with no committed
// position (discovered after the map was committed, or during discovery).
func (m *MQTTService) PublishSensorReading(reading *models.Reading) {
	base := fmt.Sprintf("%s/sensor/%s", m.config.BaseTopic, reading.SensorID.String())
	m.publish(base+"/pressure", fmt.Sprintf("%.1f", reading.Pressure), true)
	m.publish(base+"/temperature", fmt.Sprintf("%d", reading.Temperature), true)
}

// PublishPositionAvailability marks a position online/offline. Stale sensors
// go offline; that is expected steady state, not an alert.
func (m *MQTTService) PublishPositionAvailability(position int, available bool) {
	topic := fmt.Sprintf("%s/tire/%d/availability", m.config.BaseTopic, position)
	state := "online"
	if !available {
		state = "offline"
	}
	m.publish(topic, state, true)
}

// PublishPositions publishes the whole position map as JSON.
func (m *MQTTService) PublishPositions(positions models.PositionMap, tireCount int) {
	payload := make(map[string]string, len(positions))
	for pos, id := range positions {
		payload[models.PositionName(tireCount, pos)] = id.String()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error("Failed to marshal position map", zap.Error(err))
		return
	}
	m.publish(m.config.BaseTopic+"/positions", string(data), true)
}

// PublishPollInterval publishes the active request cadence in seconds.
func (m *MQTTService) PublishPollInterval(interval time.Duration) {
	m.publish(m.config.BaseTopic+"/poll_interval", fmt.Sprintf("%.0f", interval.Seconds()), true)
}

// PublishRotationIdle resets the host's pattern selector after a rotation has
// been applied (or rejected), mirroring the select entity contract.
func (m *MQTTService) PublishRotationIdle() {
	m.publish(m.config.BaseTopic+"/rotate/state", "Select Pattern", true)
}

func (m *MQTTService) publish(topic, payload string, retain bool) {
	token := m.client.Publish(topic, 1, retain, payload)
	if token.Wait() && token.Error() != nil {
		m.logger.Error("Failed to publish MQTT message",
			zap.String("topic", topic),
			zap.Error(token.Error()))
	}
}

// Close disconnects from the broker
func (m *MQTTService) Close() {
	m.logger.Info("Disconnecting from MQTT broker")
	m.client.Disconnect(250)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
