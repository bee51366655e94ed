package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// MQTT transport to/from the BLE gateway
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	RawFrameTopic string
	MotionTopic   string
	RotationTopic string
	BaseTopic     string

	// Tire layout
	TireCount       int
	PositionMapFile string

	// Request cadence (governs how often the gateway is asked to connect,
	// not how often the repeater actually reports)
	PollStationarySeconds int
	PollMovingSeconds     int

	// Sensor staleness: readings older than this are published as unavailable
	SensorStaleSeconds int

	// Alert thresholds
	PressureMinPSI    float64
	PressureMaxPSI    float64
	TemperatureMaxDeg float64
	// Decoded pressures above this are reported but flagged as implausible
	PressurePlausiblePSI float64

	// Optional alert fan-out
	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string
	TelegramBotToken string
	TelegramChatID   string
	GatewayURL       string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		MQTTBroker:   getEnv("TIRELINC_MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("TIRELINC_MQTT_CLIENT_ID", "tirelinc-service"),
		MQTTUsername: getEnv("TIRELINC_MQTT_USERNAME", ""),
		MQTTPassword: getEnv("TIRELINC_MQTT_PASSWORD", ""),

		RawFrameTopic: getEnv("TIRELINC_RAW_TOPIC", "tirelinc/raw"),
		MotionTopic:   getEnv("TIRELINC_MOTION_TOPIC", "tirelinc/motion/set"),
		RotationTopic: getEnv("TIRELINC_ROTATION_TOPIC", "tirelinc/rotate/set"),
		BaseTopic:     getEnv("TIRELINC_BASE_TOPIC", "tirelinc"),

		TireCount:       getEnvInt("TIRELINC_TIRE_COUNT", 4),
		PositionMapFile: getEnv("TIRELINC_POSITION_MAP_FILE", "positions.json"),

		PollStationarySeconds: getEnvInt("TIRELINC_POLL_STATIONARY_SECONDS", 900),
		PollMovingSeconds:     getEnvInt("TIRELINC_POLL_MOVING_SECONDS", 30),

		SensorStaleSeconds: getEnvInt("TIRELINC_SENSOR_STALE_SECONDS", 3600),

		PressureMinPSI: getEnvFloat("TIRELINC_PRESSURE_MIN_PSI", 40.0),
		PressureMaxPSI: getEnvFloat("TIRELINC_PRESSURE_MAX_PSI", 90.0),
		// The wire carries temperature as a single signed byte, so only
		// thresholds up to 127 degrees are reachable
		TemperatureMaxDeg:    getEnvFloat("TIRELINC_TEMPERATURE_MAX_DEG", 120.0),
		PressurePlausiblePSI: getEnvFloat("TIRELINC_PRESSURE_PLAUSIBLE_PSI", 200.0),

		RabbitMQURL:      getEnv("TIRELINC_RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("TIRELINC_RABBITMQ_EXCHANGE", "tirelinc.alerts"),
		RabbitMQQueue:    getEnv("TIRELINC_RABBITMQ_QUEUE", "tire_alert_queue"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		GatewayURL:       getEnv("TIRELINC_GATEWAY_URL", ""),
	}

	if config.TireCount != 2 && config.TireCount != 4 && config.TireCount != 6 {
		return nil, fmt.Errorf("TIRELINC_TIRE_COUNT must be 2, 4 or 6, got %d", config.TireCount)
	}

	if config.PollMovingSeconds >= config.PollStationarySeconds {
		return nil, fmt.Errorf("TIRELINC_POLL_MOVING_SECONDS (%d) must be shorter than TIRELINC_POLL_STATIONARY_SECONDS (%d)",
			config.PollMovingSeconds, config.PollStationarySeconds)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
