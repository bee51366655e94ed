package services

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/k3vmcd/tirelinc/models"
)

// Live payload layout (best-available hypothesis from the reverse-engineering
// notes, isolated here so an offset correction touches nothing else):
//
//	bytes 0-1: pressure, unsigned little-endian, 0.1 PSI per count
//	byte  2:   temperature, signed, whole degrees
//	byte  3:   status flags
//	bytes 4+:  vendor-specific, preserved opaquely
const (
	pressureScale = 0.1
)

// DecodeReading converts a live frame's payload into physical units. The
// device is the source of truth: out-of-range values decode successfully and
// are judged by the alert detector, not rejected here.
func DecodeReading(id models.SensorID, payload []byte, now time.Time) (*models.Reading, error) {
	if len(payload) < models.MinPayloadSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d",
			models.ErrPayloadTooShort, len(payload), models.MinPayloadSize)
	}

	reading := &models.Reading{
		SensorID:    id,
		Pressure:    float64(binary.LittleEndian.Uint16(payload[0:2])) * pressureScale,
		Temperature: int(int8(payload[2])),
		StatusFlags: payload[3],
		ObservedAt:  now,
	}

	if len(payload) > models.MinPayloadSize {
		reading.Extra = make([]byte, len(payload)-models.MinPayloadSize)
		copy(reading.Extra, payload[models.MinPayloadSize:])
	}

	return reading, nil
}

// EncodeReadingPayload is the codec's inverse, for the frame generator and
// round-trip tests. Pressure is quantized to the wire resolution, and values
// outside the wire's representable range are clamped rather than wrapped.
func EncodeReadingPayload(pressure float64, temperature int, flags byte, extra []byte) []byte {
	if pressure < 0 {
		pressure = 0
	}
	counts := pressure/pressureScale + 0.5
	if counts > 65535 {
		counts = 65535
	}
	if temperature > 127 {
		temperature = 127
	} else if temperature < -128 {
		temperature = -128
	}

	payload := make([]byte, models.MinPayloadSize+len(extra))
	binary.LittleEndian.PutUint16(payload[0:2], uint16(counts))
	payload[2] = byte(int8(temperature))
	payload[3] = flags
	copy(payload[models.MinPayloadSize:], extra)
	return payload
}
