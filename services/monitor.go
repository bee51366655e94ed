package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/k3vmcd/tirelinc/config"
	"github.com/k3vmcd/tirelinc/models"

	"go.uber.org/zap"
)

// Publisher is the slice of the MQTT surface the monitor drives.
// *MQTTService is the production implementation.
type Publisher interface {
	PublishPositionReading(position int, positionName string, reading *models.Reading)
	PublishSensorReading(reading *models.Reading)
	PublishPositionAvailability(position int, available bool)
	PublishPositions(positions models.PositionMap, tireCount int)
	PublishPollInterval(interval time.Duration)
	PublishRotationIdle()
}

// TireMonitor is the pipeline: raw frames in, decoded readings into the
// registry, positions assigned once per discovery session, readings and
// alerts fanned out. It also watches for sensors going quiet, which with
// this repeater is expected steady state rather than a failure.
type TireMonitor struct {
	config     *config.Config
	logger     *zap.Logger
	registry   *SensorRegistry
	detector   *AlertDetector
	scheduler  *PollingScheduler
	mqtt       Publisher
	store      *PositionStore
	alertQueue *AlertQueueService // optional
	telegram   *TelegramService   // optional
	gateway    *GatewayService    // optional

	mu        sync.RWMutex
	positions models.PositionMap
	staleFlag map[int]bool
	moving    bool
}

// NewTireMonitor wires the pipeline. alertQueue, telegram and gateway may be
// nil when not configured.
func NewTireMonitor(
	cfg *config.Config,
	logger *zap.Logger,
	registry *SensorRegistry,
	detector *AlertDetector,
	scheduler *PollingScheduler,
	mqtt Publisher,
	store *PositionStore,
	alertQueue *AlertQueueService,
	telegram *TelegramService,
	gateway *GatewayService,
) *TireMonitor {
	return &TireMonitor{
		config:     cfg,
		logger:     logger,
		registry:   registry,
		detector:   detector,
		scheduler:  scheduler,
		mqtt:       mqtt,
		store:      store,
		alertQueue: alertQueue,
		telegram:   telegram,
		gateway:    gateway,
		staleFlag:  make(map[int]bool),
	}
}

// RestorePositions installs a previously checkpointed map so discovery is
// skipped. Sensors from the map are seeded into the registry's discovery
// order to keep assignment idempotent across restarts.
func (t *TireMonitor) RestorePositions(positions models.PositionMap) {
	if positions == nil {
		return
	}
	now := time.Now()
	for pos := 1; pos <= t.config.TireCount; pos++ {
		if id, ok := positions[pos]; ok {
			t.registry.ObserveID(id, now)
		}
	}

	t.mu.Lock()
	t.positions = positions.Clone()
	t.mu.Unlock()

	t.logger.Info("Restored position map from checkpoint",
		zap.Int("tire_count", t.config.TireCount))
	t.mqtt.PublishPositions(positions, t.config.TireCount)
}

// Positions returns the current committed map, or nil while discovery is
// still in progress.
func (t *TireMonitor) Positions() models.PositionMap {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.positions == nil {
		return nil
	}
	return t.positions.Clone()
}

// Start consumes raw frames until the context is cancelled.
func (t *TireMonitor) Start(ctx context.Context, frames <-chan []byte) {
	t.logger.Info("Starting tire monitor",
		zap.Int("tire_count", t.config.TireCount),
		zap.Int("stale_seconds", t.config.SensorStaleSeconds))

	// Publish the initial cadence so the host never reads an empty value
	t.applyMotion(false)

	go t.runStaleChecker(ctx)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Tire monitor stopped")
			return

		case frame, ok := <-frames:
			if !ok {
				t.logger.Warn("Frame channel closed")
				return
			}
			t.HandleFrame(frame)
		}
	}
}

// HandleFrame decodes one notification and routes it. Decode failures are
// logged and swallowed here, at the per-frame boundary: one bad notification
// must never stall the stream.
func (t *TireMonitor) HandleFrame(data []byte) {
	frame, err := DecodeFrame(data)
	if err != nil {
		t.logger.Warn("Dropping undecodable notification",
			zap.Int("length", len(data)),
			zap.Error(err))
		return
	}

	now := time.Now()

	if frame.IsDiscovery() {
		t.registry.ObserveID(frame.SensorID, now)
		t.maybeAssign()
		return
	}

	reading, err := DecodeReading(frame.SensorID, frame.Payload, now)
	if err != nil {
		t.logger.Warn("Dropping undecodable live payload",
			zap.String("sensor_id", frame.SensorID.String()),
			zap.Error(err))
		// The sensor still announced itself; keep its discovery slot
		t.registry.ObserveID(frame.SensorID, now)
		t.maybeAssign()
		return
	}

	t.registry.Observe(reading)
	t.maybeAssign()
	t.publishReading(reading)
}

// maybeAssign commits the position map once enough sensors have been
// discovered. Later discoveries never alter a committed map.
func (t *TireMonitor) maybeAssign() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.positions != nil {
		return
	}

	positions, err := AssignPositions(t.registry.DiscoveryOrder(), t.config.TireCount)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientSensors) {
			t.logger.Debug("Discovery in progress",
				zap.Int("discovered", t.registry.Count()),
				zap.Int("needed", t.config.TireCount))
		} else {
			t.logger.Error("Position assignment failed", zap.Error(err))
		}
		return
	}

	t.positions = positions
	t.logger.Info("Committed tire position map")

	if err := t.store.Save(positions, t.config.TireCount); err != nil {
		t.logger.Error("Failed to checkpoint position map", zap.Error(err))
	}
	t.mqtt.PublishPositions(positions, t.config.TireCount)
}

func (t *TireMonitor) publishReading(reading *models.Reading) {
	position, ok := t.positionOf(reading.SensorID)
	if !ok {
		// Seen but not part of the committed layout; still worth rendering
		t.logger.Debug("Reading from unassigned sensor",
			zap.String("sensor_id", reading.SensorID.String()))
		t.mqtt.PublishSensorReading(reading)
		return
	}

	positionName := models.PositionName(t.config.TireCount, position)
	t.mqtt.PublishPositionReading(position, positionName, reading)

	t.mu.Lock()
	t.staleFlag[position] = false
	t.mu.Unlock()

	alerts := t.detector.DetectAlerts(reading, position, positionName)
	if len(alerts) == 0 {
		return
	}

	t.logger.Warn("Tire alerts detected",
		zap.String("sensor_id", reading.SensorID.String()),
		zap.String("position", positionName),
		zap.Int("alert_count", len(alerts)),
		zap.Float64("pressure", reading.Pressure),
		zap.Int("temperature", reading.Temperature))

	if t.alertQueue != nil {
		for _, alert := range alerts {
			if err := t.alertQueue.PublishAlert(alert); err != nil {
				t.logger.Error("Failed to publish alert to queue",
					zap.String("sensor_id", reading.SensorID.String()),
					zap.Error(err))
			}
		}
	}

	if t.telegram != nil {
		if err := t.telegram.SendTireAlerts(alerts, reading); err != nil {
			t.logger.Error("Failed to send Telegram alert",
				zap.String("sensor_id", reading.SensorID.String()),
				zap.Error(err))
		}
	}
}

func (t *TireMonitor) positionOf(id models.SensorID) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for pos, mapped := range t.positions {
		if mapped == id {
			return pos, true
		}
	}
	return 0, false
}

// HandleMotion reacts to the host's motion switch and republishes the
// request cadence.
func (t *TireMonitor) HandleMotion(moving bool) {
	t.mu.Lock()
	changed := t.moving != moving
	t.moving = moving
	t.mu.Unlock()

	if !changed {
		return
	}
	t.applyMotion(moving)
}

func (t *TireMonitor) applyMotion(moving bool) {
	interval := t.scheduler.IntervalFor(moving)
	t.logger.Info("Request cadence updated",
		zap.Bool("moving", moving),
		zap.Duration("interval", interval))

	t.mqtt.PublishPollInterval(interval)

	if t.gateway != nil {
		if err := t.gateway.SetPollInterval(interval, moving); err != nil {
			t.logger.Error("Failed to update gateway cadence", zap.Error(err))
		}
	}
}

// HandleRotation applies a named rotation pattern to the committed map. The
// map is replaced atomically or not at all, and the host's pattern selector
// is reset to idle either way.
func (t *TireMonitor) HandleRotation(pattern string) {
	defer t.mqtt.PublishRotationIdle()

	if pattern == "" || pattern == "Select Pattern" {
		return
	}

	t.mu.Lock()
	if t.positions == nil {
		t.mu.Unlock()
		t.logger.Warn("Rotation requested before discovery completed",
			zap.String("pattern", pattern))
		return
	}

	rotated, err := ApplyRotation(t.positions, pattern, t.config.TireCount)
	if err != nil {
		t.mu.Unlock()
		t.logger.Error("Rotation rejected",
			zap.String("pattern", pattern),
			zap.Error(err))
		return
	}
	t.positions = rotated
	t.mu.Unlock()

	t.logger.Info("Applied rotation pattern", zap.String("pattern", pattern))

	if err := t.store.Save(rotated, t.config.TireCount); err != nil {
		t.logger.Error("Failed to checkpoint rotated map", zap.Error(err))
	}
	t.mqtt.PublishPositions(rotated, t.config.TireCount)

	// Re-home the latest readings under their new positions so the host's
	// entities update without waiting for the next report
	for pos := 1; pos <= t.config.TireCount; pos++ {
		id := rotated[pos]
		if reading := t.registry.Latest(id); reading != nil {
			t.mqtt.PublishPositionReading(pos, models.PositionName(t.config.TireCount, pos), reading)
		}
	}
}

// runStaleChecker periodically flips quiet sensors to unavailable.
func (t *TireMonitor) runStaleChecker(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkStale()
		}
	}
}

func (t *TireMonitor) checkStale() {
	positions := t.Positions()
	if positions == nil {
		return
	}

	staleAfter := time.Duration(t.config.SensorStaleSeconds) * time.Second
	now := time.Now()

	for pos := 1; pos <= t.config.TireCount; pos++ {
		id, ok := positions[pos]
		if !ok {
			continue
		}

		reading := t.registry.Latest(id)
		isStale := reading == nil || now.Sub(reading.ObservedAt) > staleAfter

		t.mu.Lock()
		wasStale := t.staleFlag[pos]
		t.staleFlag[pos] = isStale
		t.mu.Unlock()

		if isStale && !wasStale {
			t.logger.Info("Sensor has gone quiet, marking unavailable",
				zap.String("sensor_id", id.String()),
				zap.Int("position", pos))
			t.mqtt.PublishPositionAvailability(pos, false)
		}
	}
}
