package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k3vmcd/tirelinc/models"
	"github.com/k3vmcd/tirelinc/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

var (
	rps        = flag.Float64("rps", 0.5, "Frames per second to send")
	sensors    = flag.Int("sensors", 4, "Number of simulated tire sensors (2, 4 or 6)")
	anomaly    = flag.Float64("anomaly", 0.05, "Probability of an anomalous reading (0.0-1.0)")
	garbage    = flag.Float64("garbage", 0.02, "Probability of an unsupported/truncated frame (0.0-1.0)")
	mqttBroker = flag.String("broker", "localhost:1883", "MQTT broker address (host:port)")
	mqttUser   = flag.String("user", "", "MQTT username")
	mqttPass   = flag.String("pass", "", "MQTT password")
	mqttTopic  = flag.String("topic", "tirelinc/raw", "MQTT topic to publish raw frames to")
)

// MockRepeater emulates a TireLinc repeater: a burst of discovery frames on
// startup, then live readings in a fixed sensor order with occasional noise.
type MockRepeater struct {
	sensorIDs    []models.SensorID
	anomalyProb  float64
	garbageProb  float64
	basePressure float64
	baseTemp     int
	logger       *zap.Logger
}

func NewMockRepeater(count int, anomalyProb, garbageProb float64, logger *zap.Logger) *MockRepeater {
	ids := make([]models.SensorID, count)
	for i := range ids {
		// Realistic IDs: vendor prefix 0x0E, random middle, 0x02 suffix
		ids[i] = models.SensorID{0x0E, byte(rand.Intn(256)), byte(rand.Intn(256)), 0x02}
	}
	return &MockRepeater{
		sensorIDs:    ids,
		anomalyProb:  anomalyProb,
		garbageProb:  garbageProb,
		basePressure: 62.0, // trailer tire around 62 PSI
		baseTemp:     75,
		logger:       logger,
	}
}

// DiscoveryFrames returns one discovery frame per sensor, in physical order.
func (m *MockRepeater) DiscoveryFrames() [][]byte {
	frames := make([][]byte, len(m.sensorIDs))
	for i, id := range m.sensorIDs {
		frames[i] = services.EncodeFrame(&models.Frame{
			Type:     models.FrameTypeDiscovery,
			SensorID: id,
		})
	}
	return frames
}

// NextFrame generates the next live frame (or occasional garbage).
func (m *MockRepeater) NextFrame(seq int) ([]byte, bool) {
	if rand.Float64() < m.garbageProb {
		// Unsupported type byte or truncated frame, as seen on real links
		if rand.Float64() < 0.5 {
			return []byte{0x01, 0xDE, 0xAD, 0xBE, 0xEF, 0x00}, true
		}
		return []byte{0x02, 0x0E}, true
	}

	id := m.sensorIDs[seq%len(m.sensorIDs)]

	pressure := m.basePressure + rand.Float64()*4.0 - 2.0
	temperature := m.baseTemp + rand.Intn(9) - 4
	var flags byte

	isAnomaly := rand.Float64() < m.anomalyProb
	if isAnomaly {
		switch rand.Intn(4) {
		case 0:
			pressure = 20.0 + rand.Float64()*10.0 // deflating
			flags |= models.FlagAlertActive
		case 1:
			pressure = 220.0 + rand.Float64()*600.0 // spurious spike
		case 2:
			// Overheating, kept inside the signed wire byte's range
			temperature = 122 + rand.Intn(6)
			flags |= models.FlagAlertActive
		case 3:
			flags |= models.FlagLowBattery
		}
	}

	payload := services.EncodeReadingPayload(pressure, temperature, flags, []byte{0x00, 0x00})
	frame := services.EncodeFrame(&models.Frame{
		Type:     models.FrameTypeLive,
		SensorID: id,
		Payload:  payload,
	})
	return frame, isAnomaly
}

func main() {
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if *sensors != 2 && *sensors != 4 && *sensors != 6 {
		logger.Fatal("sensors must be 2, 4 or 6", zap.Int("sensors", *sensors))
	}

	logger.Info("TireLinc frame generator started",
		zap.Int("sensors", *sensors),
		zap.Float64("rps", *rps),
		zap.Float64("anomaly_probability", *anomaly),
		zap.String("mqtt_broker", *mqttBroker),
		zap.String("mqtt_topic", *mqttTopic),
	)
	logger.Info("Press Ctrl+C to stop gracefully")

	// Initialize MQTT client (simulating the BLE gateway)
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", *mqttBroker))
	opts.SetClientID("tirelinc-framegen")
	opts.SetUsername(*mqttUser)
	opts.SetPassword(*mqttPass)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", *mqttBroker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Error("MQTT connection lost", zap.Error(err))
	}

	mqttClient := mqtt.NewClient(opts)
	if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(token.Error()))
	}
	defer mqttClient.Disconnect(250)

	repeater := NewMockRepeater(*sensors, *anomaly, *garbage, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping generator")
		cancel()
	}()

	// Announce all sensors first, the way the real repeater does after a
	// connection is established
	for i, frame := range repeater.DiscoveryFrames() {
		token := mqttClient.Publish(*mqttTopic, 1, false, frame)
		if token.Wait() && token.Error() != nil {
			logger.Error("Failed to publish discovery frame", zap.Error(token.Error()))
		} else {
			logger.Info("Published discovery frame",
				zap.Int("sensor_index", i+1),
				zap.String("sensor_id", repeater.sensorIDs[i].String()))
		}
	}

	interval := time.Duration(float64(time.Second) / *rps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Starting to generate live frames",
		zap.Duration("interval", interval))

	frameCount := 0
	anomalyCount := 0
	startTime := time.Now()

	statsTicker := time.NewTicker(60 * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			elapsed := time.Since(startTime)
			logger.Info("Shutting down gracefully",
				zap.Int("total_frames", frameCount),
				zap.Int("anomalies_generated", anomalyCount),
				zap.Duration("total_uptime", elapsed),
			)
			mqttClient.Disconnect(250)
			return

		case <-ticker.C:
			frame, isAnomaly := repeater.NextFrame(frameCount)
			if isAnomaly {
				anomalyCount++
			}

			token := mqttClient.Publish(*mqttTopic, 1, false, frame)
			if token.Wait() && token.Error() != nil {
				logger.Error("Failed to publish frame",
					zap.Error(token.Error()),
					zap.Int("frame_count", frameCount))
				continue
			}
			frameCount++

			logger.Debug("Published frame",
				zap.Int("count", frameCount),
				zap.Bool("is_anomaly", isAnomaly),
				zap.Int("length", len(frame)))

		case <-statsTicker.C:
			logger.Info("Statistics",
				zap.Int("total_frames", frameCount),
				zap.Int("anomalies", anomalyCount),
				zap.Duration("uptime", time.Since(startTime)),
			)
		}
	}
}
