package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/k3vmcd/tirelinc/models"

	"go.uber.org/zap"
)

// PositionStore checkpoints the committed position map so a restart skips
// re-discovery. The file is the host's artifact; deleting it is how the user
// forces a fresh discovery session.
type PositionStore struct {
	path   string
	logger *zap.Logger
}

type positionCheckpoint struct {
	TireCount int            `json:"tire_count"`
	Positions map[int]string `json:"positions"`
}

func NewPositionStore(path string, logger *zap.Logger) *PositionStore {
	return &PositionStore{path: path, logger: logger}
}

// Load returns the checkpointed map, or nil if no checkpoint exists yet.
// A checkpoint for a different tire count is ignored: the user reconfigured
// the layout, so discovery must run again.
func (s *PositionStore) Load(tireCount int) (models.PositionMap, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read position checkpoint: %w", err)
	}

	var checkpoint positionCheckpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to parse position checkpoint: %w", err)
	}

	if checkpoint.TireCount != tireCount {
		s.logger.Warn("Position checkpoint is for a different tire count, ignoring",
			zap.Int("checkpoint_tire_count", checkpoint.TireCount),
			zap.Int("configured_tire_count", tireCount))
		return nil, nil
	}

	positions := make(models.PositionMap, len(checkpoint.Positions))
	for pos, idStr := range checkpoint.Positions {
		id, err := models.ParseSensorID(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse position checkpoint: %w", err)
		}
		positions[pos] = id
	}
	return positions, nil
}

// Save writes the map atomically (write temp, rename).
func (s *PositionStore) Save(positions models.PositionMap, tireCount int) error {
	checkpoint := positionCheckpoint{
		TireCount: tireCount,
		Positions: make(map[int]string, len(positions)),
	}
	for pos, id := range positions {
		checkpoint.Positions[pos] = id.String()
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal position checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write position checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace position checkpoint: %w", err)
	}

	s.logger.Info("Position map checkpointed", zap.String("path", s.path))
	return nil
}
