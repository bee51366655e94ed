package services

import (
	"time"

	"github.com/k3vmcd/tirelinc/config"
)

// PollingScheduler maps the externally-debounced motion flag to the cadence
// at which the host should next request fresh data. Two constants, no
// hysteresis, no memory beyond the flag itself. It governs how often the
// gateway asks; the repeater answers on its own irregular schedule and
// nothing here can change that.
type PollingScheduler struct {
	stationary time.Duration
	moving     time.Duration
}

// NewPollingScheduler creates a scheduler from the configured intervals
func NewPollingScheduler(cfg *config.Config) *PollingScheduler {
	return &PollingScheduler{
		stationary: time.Duration(cfg.PollStationarySeconds) * time.Second,
		moving:     time.Duration(cfg.PollMovingSeconds) * time.Second,
	}
}

// IntervalFor returns the request interval for the given motion state.
func (s *PollingScheduler) IntervalFor(moving bool) time.Duration {
	if moving {
		return s.moving
	}
	return s.stationary
}
