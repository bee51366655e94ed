package models

import (
	"errors"
	"fmt"
	"strings"
)

// Notification frame layout, reverse-engineered from the TireLinc repeater:
//
//	Type (1 byte) | SensorID (4 bytes) | Payload (live frames only)
//
// The type byte alone decides the variant. Anything else on the wire is
// reported as unsupported and dropped, never fatal.
const (
	FrameTypeDiscovery byte = 0x00
	FrameTypeLive      byte = 0x02

	SensorIDSize    = 4
	FrameHeaderSize = 1 + SensorIDSize

	// Minimum live payload: pressure(2) + temperature(1) + flags(1)
	MinPayloadSize = 4
)

var (
	ErrFrameTooShort       = errors.New("frame shorter than header")
	ErrUnknownFrameType    = errors.New("unsupported frame type")
	ErrPayloadTooShort     = errors.New("live payload too short")
	ErrInsufficientSensors = errors.New("not enough sensors discovered yet")
	ErrInvalidTireCount    = errors.New("tire count must be 2, 4 or 6")
	ErrUnknownPattern      = errors.New("unknown rotation pattern")
)

// SensorID is the opaque 4-byte identifier a tire sensor reports under.
// It is never reinterpreted as an integer; equality is byte-exact.
type SensorID [SensorIDSize]byte

// String renders the ID the way the repeater's own tooling does, e.g. "0E-FF-47-02".
func (id SensorID) String() string {
	parts := make([]string, SensorIDSize)
	for i, b := range id {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, "-")
}

// ParseSensorID parses the "0E-FF-47-02" form back into a SensorID.
func ParseSensorID(s string) (SensorID, error) {
	var id SensorID
	clean := strings.ReplaceAll(s, "-", "")
	if len(clean) != SensorIDSize*2 {
		return id, fmt.Errorf("invalid sensor id %q", s)
	}
	for i := 0; i < SensorIDSize; i++ {
		var b byte
		if _, err := fmt.Sscanf(clean[i*2:i*2+2], "%02X", &b); err != nil {
			return id, fmt.Errorf("invalid sensor id %q: %w", s, err)
		}
		id[i] = b
	}
	return id, nil
}

// Frame is a single decoded notification. Discovery frames only announce a
// sensor's presence; live frames carry the measurement payload unparsed.
type Frame struct {
	Type     byte
	SensorID SensorID
	Payload  []byte
}

// IsDiscovery reports whether the frame announces presence without a reading.
func (f *Frame) IsDiscovery() bool {
	return f.Type == FrameTypeDiscovery
}
