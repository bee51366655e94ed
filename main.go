package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k3vmcd/tirelinc/config"
	"github.com/k3vmcd/tirelinc/log"
	"github.com/k3vmcd/tirelinc/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger := log.GetInstance()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("TireLinc TPMS Monitoring Service starting",
		zap.Int("tire_count", cfg.TireCount),
		zap.String("mqtt_broker", cfg.MQTTBroker),
		zap.String("raw_topic", cfg.RawFrameTopic),
		zap.Int("poll_stationary_seconds", cfg.PollStationarySeconds),
		zap.Int("poll_moving_seconds", cfg.PollMovingSeconds),
		zap.Float64("pressure_min_psi", cfg.PressureMinPSI),
		zap.Float64("pressure_max_psi", cfg.PressureMaxPSI),
	)

	// Initialize services
	mqttService, err := services.NewMQTTService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize MQTT service", zap.Error(err))
	}
	defer mqttService.Close()

	registry := services.NewSensorRegistry(logger)
	detector := services.NewAlertDetector(cfg)
	scheduler := services.NewPollingScheduler(cfg)
	store := services.NewPositionStore(cfg.PositionMapFile, logger)

	var alertQueue *services.AlertQueueService
	if cfg.RabbitMQURL != "" {
		alertQueue, err = services.NewAlertQueueService(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize alert queue", zap.Error(err))
		}
		defer alertQueue.Close()
	}

	var telegramService *services.TelegramService
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegramService, err = services.NewTelegramService(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram service", zap.Error(err))
		}
	}

	var gatewayService *services.GatewayService
	if cfg.GatewayURL != "" {
		gatewayService = services.NewGatewayService(logger, cfg.GatewayURL)
		logger.Info("Gateway cadence webhook enabled", zap.String("url", cfg.GatewayURL))
	}

	monitor := services.NewTireMonitor(
		cfg, logger, registry, detector, scheduler,
		mqttService, store, alertQueue, telegramService, gatewayService,
	)

	// Restore a checkpointed position map to skip re-discovery
	if positions, err := store.Load(cfg.TireCount); err != nil {
		logger.Error("Failed to load position checkpoint, running discovery", zap.Error(err))
	} else if positions != nil {
		monitor.RestorePositions(positions)
	} else {
		logger.Info("No position checkpoint, waiting for sensor discovery",
			zap.Int("tire_count", cfg.TireCount))
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	frameChan := make(chan []byte, 64)

	// Subscribe to the gateway's streams
	if err := mqttService.SubscribeRawFrames(func(frame []byte) {
		select {
		case frameChan <- frame:
		default:
			logger.Warn("Frame channel full, dropping notification")
		}
	}); err != nil {
		logger.Fatal("Failed to subscribe to raw frames", zap.Error(err))
	}

	if err := mqttService.SubscribeMotion(monitor.HandleMotion); err != nil {
		logger.Fatal("Failed to subscribe to motion switch", zap.Error(err))
	}

	if err := mqttService.SubscribeRotation(monitor.HandleRotation); err != nil {
		logger.Fatal("Failed to subscribe to rotation commands", zap.Error(err))
	}

	// Send startup notification
	if telegramService != nil {
		if err := telegramService.SendStartupMessage(cfg.TireCount); err != nil {
			logger.Warn("Failed to send startup message", zap.Error(err))
		}
	}

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping services")
		cancel()
	}()

	logger.Info("Monitoring started, waiting for notifications")

	monitor.Start(ctx, frameChan)

	// Give in-flight publishes a moment before the deferred disconnects run
	time.Sleep(250 * time.Millisecond)
	logger.Info("TireLinc TPMS Monitoring Service stopped")
}
