package services

import (
	"fmt"

	"github.com/k3vmcd/tirelinc/models"
)

// AssignPositions commits the first tireCount distinct sensors, in discovery
// order, to positions 1..tireCount. The documented expectation is that
// sensors report in a fixed physical order during initial discovery; this is
// a best-effort heuristic the user can override by re-pairing or rotating,
// and it lives behind this one function so a smarter policy (signal strength,
// say) can replace it without touching decoding or rotation.
//
// Idempotent for a given discovery order; the caller invokes it once per
// discovery session and checkpoints the result, since later discoveries must
// not silently alter a committed map.
func AssignPositions(order []models.SensorID, tireCount int) (models.PositionMap, error) {
	if _, ok := models.RotationPatterns[tireCount]; !ok {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidTireCount, tireCount)
	}

	if len(order) < tireCount {
		return nil, fmt.Errorf("%w: have %d of %d",
			models.ErrInsufficientSensors, len(order), tireCount)
	}

	positions := make(models.PositionMap, tireCount)
	for i := 0; i < tireCount; i++ {
		positions[i+1] = order[i]
	}
	return positions, nil
}
