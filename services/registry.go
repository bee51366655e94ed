package services

import (
	"sync"
	"time"

	"github.com/k3vmcd/tirelinc/models"

	"go.uber.org/zap"
)

// SensorRegistry tracks every sensor ever seen this session and its most
// recent reading. Discovery order is append-only and is the sole signal the
// assigner has for inferring physical layout, so it is never re-sorted.
type SensorRegistry struct {
	logger *zap.Logger

	mu     sync.RWMutex
	order  []models.SensorID
	seen   map[models.SensorID]time.Time
	latest map[models.SensorID]*models.Reading
}

// NewSensorRegistry creates an empty registry
func NewSensorRegistry(logger *zap.Logger) *SensorRegistry {
	return &SensorRegistry{
		logger: logger,
		seen:   make(map[models.SensorID]time.Time),
		latest: make(map[models.SensorID]*models.Reading),
	}
}

// ObserveID records a sensor's presence. First observation fixes its place in
// the discovery order; repeats are no-ops.
func (r *SensorRegistry) ObserveID(id models.SensorID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observeLocked(id, at)
}

// Observe records the sensor if new and stores the reading as its latest
// value, replacing any prior one.
func (r *SensorRegistry) Observe(reading *models.Reading) {
	if reading == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observeLocked(reading.SensorID, reading.ObservedAt)
	r.latest[reading.SensorID] = reading
}

func (r *SensorRegistry) observeLocked(id models.SensorID, at time.Time) {
	if _, exists := r.seen[id]; !exists {
		r.seen[id] = at
		r.order = append(r.order, id)
		r.logger.Info("Discovered new tire sensor",
			zap.String("sensor_id", id.String()),
			zap.Int("discovered_count", len(r.order)))
	}
}

// DiscoveryOrder returns sensor IDs in first-seen order.
func (r *SensorRegistry) DiscoveryOrder() []models.SensorID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order := make([]models.SensorID, len(r.order))
	copy(order, r.order)
	return order
}

// Latest returns the most recent reading for a sensor, or nil if it has not
// reported this session. Absence is a valid state, not a fault; the host
// renders it as "sensor unavailable".
func (r *SensorRegistry) Latest(id models.SensorID) *models.Reading {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest[id]
}

// Count returns how many distinct sensors have been observed.
func (r *SensorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
