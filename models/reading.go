package models

import (
	"time"
)

// Status flag bits carried in the live payload. Only the low two bits have a
// confirmed meaning; the rest of the byte and any trailing payload bytes are
// vendor-specific and preserved untouched in Reading.Extra.
const (
	FlagAlertActive byte = 1 << 0
	FlagLowBattery  byte = 1 << 1
)

// Reading is one decoded measurement from a tire sensor. Immutable once
// constructed; a newer Reading for the same sensor replaces the prior one in
// the registry.
type Reading struct {
	SensorID SensorID `json:"sensor_id"`

	// units: PSI, 0.1 resolution
	Pressure float64 `json:"pressure"`

	// units: whole degrees, signed
	Temperature int `json:"temperature"`

	StatusFlags byte `json:"status_flags"`

	// Unparsed payload remainder after the known fields, kept so future
	// bit meanings are not silently lost.
	Extra []byte `json:"extra,omitempty"`

	ObservedAt time.Time `json:"observed_at"`
}

// AlertActive reports the device's own alert bit.
func (r *Reading) AlertActive() bool {
	return r.StatusFlags&FlagAlertActive != 0
}

// LowBattery reports the sensor battery warning bit.
func (r *Reading) LowBattery() bool {
	return r.StatusFlags&FlagLowBattery != 0
}
