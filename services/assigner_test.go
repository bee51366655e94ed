package services

import (
	"errors"
	"testing"

	"github.com/k3vmcd/tirelinc/models"
)

func sensorID(b byte) models.SensorID {
	return models.SensorID{0x0E, b, 0x00, 0x02}
}

func TestAssignPositionsDiscoveryOrder(t *testing.T) {
	a, b, c, d := sensorID('A'), sensorID('B'), sensorID('C'), sensorID('D')

	positions, err := AssignPositions([]models.SensorID{a, b, c, d}, 4)
	if err != nil {
		t.Fatalf("AssignPositions() error = %v", err)
	}

	want := models.PositionMap{1: a, 2: b, 3: c, 4: d}
	for pos, id := range want {
		if positions[pos] != id {
			t.Errorf("position %d = %v, want %v", pos, positions[pos], id)
		}
	}
}

func TestAssignPositionsIdempotent(t *testing.T) {
	order := []models.SensorID{sensorID(1), sensorID(2), sensorID(3), sensorID(4), sensorID(5), sensorID(6)}

	for _, n := range []int{2, 4, 6} {
		first, err := AssignPositions(order, n)
		if err != nil {
			t.Fatalf("AssignPositions(n=%d) error = %v", n, err)
		}
		second, err := AssignPositions(order, n)
		if err != nil {
			t.Fatalf("AssignPositions(n=%d) repeat error = %v", n, err)
		}
		if len(first) != n || len(second) != n {
			t.Errorf("n=%d: map sizes %d/%d, want %d", n, len(first), len(second), n)
		}
		for pos := 1; pos <= n; pos++ {
			if first[pos] != second[pos] {
				t.Errorf("n=%d position %d differs between calls: %v vs %v", n, pos, first[pos], second[pos])
			}
		}
	}
}

func TestAssignPositionsInsufficientSensors(t *testing.T) {
	for _, n := range []int{2, 4, 6} {
		for have := 0; have < n; have++ {
			order := make([]models.SensorID, have)
			for i := range order {
				order[i] = sensorID(byte(i))
			}
			positions, err := AssignPositions(order, n)
			if !errors.Is(err, models.ErrInsufficientSensors) {
				t.Errorf("AssignPositions(%d of %d) err = %v, want ErrInsufficientSensors", have, n, err)
			}
			if positions != nil {
				t.Errorf("AssignPositions(%d of %d) = %v, want nil", have, n, positions)
			}
		}
	}
}

func TestAssignPositionsInvalidTireCount(t *testing.T) {
	order := []models.SensorID{sensorID(1), sensorID(2), sensorID(3)}

	for _, n := range []int{0, 1, 3, 5, 8} {
		_, err := AssignPositions(order, n)
		if !errors.Is(err, models.ErrInvalidTireCount) {
			t.Errorf("AssignPositions(n=%d) err = %v, want ErrInvalidTireCount", n, err)
		}
	}
}

func TestAssignPositionsIgnoresLateDiscoveries(t *testing.T) {
	// A fifth sensor discovered after the first four must not shift the map
	order := []models.SensorID{sensorID(1), sensorID(2), sensorID(3), sensorID(4), sensorID(9)}

	positions, err := AssignPositions(order, 4)
	if err != nil {
		t.Fatalf("AssignPositions() error = %v", err)
	}
	if len(positions) != 4 {
		t.Fatalf("map size = %d, want 4", len(positions))
	}
	for pos := 1; pos <= 4; pos++ {
		if positions[pos] != order[pos-1] {
			t.Errorf("position %d = %v, want %v", pos, positions[pos], order[pos-1])
		}
	}
}
