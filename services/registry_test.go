package services

import (
	"testing"
	"time"

	"github.com/k3vmcd/tirelinc/models"

	"go.uber.org/zap"
)

func newTestRegistry() *SensorRegistry {
	return NewSensorRegistry(zap.NewNop())
}

func TestRegistryDiscoveryOrderIsInsertionOrder(t *testing.T) {
	registry := newTestRegistry()
	now := time.Now()

	// Deliberately not sorted by identifier value: physical reporting order
	// is the only layout signal there is
	ids := []models.SensorID{sensorID(0xC0), sensorID(0x01), sensorID(0xFF), sensorID(0x10)}
	for _, id := range ids {
		registry.ObserveID(id, now)
	}

	order := registry.DiscoveryOrder()
	if len(order) != len(ids) {
		t.Fatalf("DiscoveryOrder() length = %d, want %d", len(order), len(ids))
	}
	for i, id := range ids {
		if order[i] != id {
			t.Errorf("order[%d] = %v, want %v", i, order[i], id)
		}
	}
}

func TestRegistryRepeatObservationKeepsOrder(t *testing.T) {
	registry := newTestRegistry()
	now := time.Now()

	registry.ObserveID(sensorID(1), now)
	registry.ObserveID(sensorID(2), now)
	registry.ObserveID(sensorID(1), now.Add(time.Second))
	registry.Observe(&models.Reading{SensorID: sensorID(1), ObservedAt: now.Add(2 * time.Second)})

	order := registry.DiscoveryOrder()
	if len(order) != 2 {
		t.Fatalf("DiscoveryOrder() length = %d, want 2", len(order))
	}
	if order[0] != sensorID(1) || order[1] != sensorID(2) {
		t.Errorf("order = %v, want [sensor 1, sensor 2]", order)
	}
}

func TestRegistryLatestReplaced(t *testing.T) {
	registry := newTestRegistry()
	id := sensorID(7)
	now := time.Now()

	first := &models.Reading{SensorID: id, Pressure: 62.0, Temperature: 70, ObservedAt: now}
	second := &models.Reading{SensorID: id, Pressure: 58.5, Temperature: 82, ObservedAt: now.Add(30 * time.Second)}

	registry.Observe(first)
	registry.Observe(second)

	latest := registry.Latest(id)
	if latest == nil {
		t.Fatal("Latest() = nil after two observations")
	}
	if latest.Pressure != 58.5 || latest.Temperature != 82 {
		t.Errorf("Latest() = %+v, want the second reading", latest)
	}
	// The earlier Reading is superseded, never mutated
	if first.Pressure != 62.0 {
		t.Errorf("first reading mutated: %+v", first)
	}
}

func TestRegistryLatestUnseenSensor(t *testing.T) {
	registry := newTestRegistry()
	// Never-seen is a valid state, not a fault
	if latest := registry.Latest(sensorID(0xEE)); latest != nil {
		t.Errorf("Latest(unseen) = %+v, want nil", latest)
	}
}

func TestRegistryCount(t *testing.T) {
	registry := newTestRegistry()
	now := time.Now()

	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
	for i := 1; i <= 6; i++ {
		registry.ObserveID(sensorID(byte(i)), now)
	}
	registry.ObserveID(sensorID(3), now)
	if registry.Count() != 6 {
		t.Errorf("Count() = %d, want 6", registry.Count())
	}
}
