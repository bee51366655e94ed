package services

import (
	"fmt"

	"github.com/k3vmcd/tirelinc/models"
)

// DecodeFrame parses one raw notification into a typed frame. Pure function;
// a malformed notification yields an error for the caller to log and drop,
// it never aborts the stream.
func DecodeFrame(data []byte) (*models.Frame, error) {
	if len(data) < models.FrameHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d",
			models.ErrFrameTooShort, len(data), models.FrameHeaderSize)
	}

	frameType := data[0]
	if frameType != models.FrameTypeDiscovery && frameType != models.FrameTypeLive {
		return nil, fmt.Errorf("%w: 0x%02X", models.ErrUnknownFrameType, frameType)
	}

	frame := &models.Frame{Type: frameType}
	// Identifier bytes are carried through in wire order, never reinterpreted
	// as an integer.
	copy(frame.SensorID[:], data[1:models.FrameHeaderSize])

	if frameType == models.FrameTypeLive && len(data) > models.FrameHeaderSize {
		frame.Payload = make([]byte, len(data)-models.FrameHeaderSize)
		copy(frame.Payload, data[models.FrameHeaderSize:])
	}

	return frame, nil
}

// EncodeFrame renders a frame back to the wire layout. Used by the synthetic
// frame generator and by tests; the repeater itself is the only real producer.
func EncodeFrame(frame *models.Frame) []byte {
	if frame == nil {
		return nil
	}
	data := make([]byte, models.FrameHeaderSize+len(frame.Payload))
	data[0] = frame.Type
	copy(data[1:], frame.SensorID[:])
	copy(data[models.FrameHeaderSize:], frame.Payload)
	return data
}
