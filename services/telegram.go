package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/k3vmcd/tirelinc/config"
	"github.com/k3vmcd/tirelinc/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramService struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	config         *config.Config
	lastAlertTimes map[models.SensorID]time.Time // Track last alert time per sensor
	logger         *zap.Logger
}

func NewTelegramService(cfg *config.Config, logger *zap.Logger) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %v", err)
	}

	chatID, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing chat ID: %v", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	ts := &TelegramService{
		bot:            bot,
		chatID:         chatID,
		config:         cfg,
		lastAlertTimes: make(map[models.SensorID]time.Time),
		logger:         logger,
	}

	// Test Telegram connection with retry
	if err := ts.testConnection(); err != nil {
		logger.Error("Telegram connection test failed", zap.Error(err))
		return nil, fmt.Errorf("telegram connection test failed: %v", err)
	}

	return ts, nil
}

// testConnection tests Telegram connection with retry logic
func (ts *TelegramService) testConnection() error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ts.logger.Info("Testing Telegram connection", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))

		_, err := ts.bot.GetMe()
		if err == nil {
			ts.logger.Info("Telegram connection successful")
			return nil
		}

		ts.logger.Warn("Telegram connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("failed to connect to Telegram after %d attempts", maxRetries)
}

// SendTireAlerts sends a formatted tire alert to Telegram with per-sensor throttling
func (ts *TelegramService) SendTireAlerts(alerts []*models.TireAlert, reading *models.Reading) error {
	if len(alerts) == 0 {
		return nil
	}

	if ts.shouldThrottleAlert(reading.SensorID) {
		ts.logger.Debug("Throttling alert", zap.String("sensor_id", reading.SensorID.String()))
		return nil
	}

	message := ts.formatAlertMessage(alerts, reading)

	msg := tgbotapi.NewMessage(ts.chatID, message)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true

	_, err := ts.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("error sending telegram message: %v", err)
	}

	ts.lastAlertTimes[reading.SensorID] = time.Now()

	ts.logger.Info("Sent tire alert",
		zap.String("sensor_id", reading.SensorID.String()),
		zap.Int("alert_count", len(alerts)))
	return nil
}

// shouldThrottleAlert checks if we should throttle alerts for a sensor.
// A moving-interval poll can deliver the same low tire every 30 seconds;
// one message per five minutes per sensor is enough.
func (ts *TelegramService) shouldThrottleAlert(id models.SensorID) bool {
	lastAlertTime, exists := ts.lastAlertTimes[id]
	if !exists {
		return false
	}
	return time.Since(lastAlertTime) < 5*time.Minute
}

// formatAlertMessage creates a mobile-friendly formatted message
func (ts *TelegramService) formatAlertMessage(alerts []*models.TireAlert, reading *models.Reading) string {
	var sb strings.Builder

	sb.WriteString("🚨 <b>TIRELINC TIRE ALERT</b> 🚨\n\n")

	position := alerts[0].PositionName
	if position == "" {
		position = "Unassigned sensor"
	}
	sb.WriteString(fmt.Sprintf("🛞 <b>Tire:</b> %s\n", position))
	sb.WriteString(fmt.Sprintf("🏷 <b>Sensor:</b> <code>%s</code>\n", reading.SensorID.String()))
	sb.WriteString(fmt.Sprintf("🕐 <b>Time:</b> %s\n\n", reading.ObservedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString("📊 <b>Current Reading:</b>\n")
	sb.WriteString(fmt.Sprintf("⏲ Pressure: %.1f PSI\n", reading.Pressure))
	sb.WriteString(fmt.Sprintf("🌡 Temperature: %d°\n\n", reading.Temperature))

	sb.WriteString("⚠️ <b>Detected Issues:</b>\n")
	for i, alert := range alerts {
		sb.WriteString(fmt.Sprintf("%s %s <b>%s</b>\n",
			alert.GetSeverityColor(),
			alert.GetAlertEmoji(),
			ts.getAlertTitle(alert)))

		sb.WriteString(fmt.Sprintf("   └ %s\n", alert.Description))

		if i < len(alerts)-1 {
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n💡 <b>Recommended Action:</b>\n")
	sb.WriteString("Pull over safely and inspect the tire before continuing.\n\n")

	sb.WriteString("🔴 <b>Status:</b> ATTENTION REQUIRED")

	return sb.String()
}

// getAlertTitle returns a user-friendly title for the alert
func (ts *TelegramService) getAlertTitle(alert *models.TireAlert) string {
	switch alert.Type {
	case models.PressureTooHigh:
		return "High Pressure Alert"
	case models.PressureTooLow:
		return "Low Pressure Alert"
	case models.PressureImplausible:
		return "Implausible Pressure Reading"
	case models.TemperatureTooHigh:
		return "High Temperature Alert"
	case models.SensorAlertActive:
		return "Sensor Alert Flag"
	case models.SensorLowBattery:
		return "Sensor Battery Low"
	default:
		return "Tire Alert"
	}
}

// SendStatusMessage sends a general status message
func (ts *TelegramService) SendStatusMessage(message string) error {
	msg := tgbotapi.NewMessage(ts.chatID, message)
	msg.ParseMode = "HTML"

	_, err := ts.bot.Send(msg)
	return err
}

// SendStartupMessage sends a message when the service starts
func (ts *TelegramService) SendStartupMessage(tireCount int) error {
	message := fmt.Sprintf("🟢 <b>TireLinc Monitoring Service Started</b>\n\n"+
		"📡 Listening for repeater notifications\n"+
		"🛞 Configured for %d tires\n"+
		"🤖 Telegram notifications active\n\n"+
		"✅ System is ready and operational!", tireCount)

	return ts.SendStatusMessage(message)
}
