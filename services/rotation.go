package services

import (
	"fmt"

	"github.com/k3vmcd/tirelinc/models"
)

// ApplyRotation permutes a position map per a named pattern from the static
// catalog for that tire count. Pure data shuffle: sensor identities, registry
// state and live readings are untouched, so rotation works even when sensors
// have not reported recently (physical rotation happens parked). On any
// error the input map is returned unchanged for the operator to retry.
func ApplyRotation(positions models.PositionMap, pattern string, tireCount int) (models.PositionMap, error) {
	catalog, ok := models.RotationPatterns[tireCount]
	if !ok {
		return positions, fmt.Errorf("%w: got %d", models.ErrInvalidTireCount, tireCount)
	}

	sigma, ok := catalog[pattern]
	if !ok {
		return positions, fmt.Errorf("%w: %q for %d tires", models.ErrUnknownPattern, pattern, tireCount)
	}

	rotated := make(models.PositionMap, tireCount)
	for pos := 1; pos <= tireCount; pos++ {
		source := sigma[pos-1]
		id, ok := positions[source]
		if !ok {
			return positions, fmt.Errorf("position %d is unmapped, cannot rotate", source)
		}
		rotated[pos] = id
	}
	return rotated, nil
}
