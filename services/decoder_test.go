package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/k3vmcd/tirelinc/models"
)

func TestDecodeFrameTooShort(t *testing.T) {
	for length := 0; length < models.FrameHeaderSize; length++ {
		data := bytes.Repeat([]byte{0x00}, length)
		frame, err := DecodeFrame(data)
		if !errors.Is(err, models.ErrFrameTooShort) {
			t.Errorf("DecodeFrame(%d bytes) err = %v, want ErrFrameTooShort", length, err)
		}
		if frame != nil {
			t.Errorf("DecodeFrame(%d bytes) frame = %v, want nil", length, frame)
		}
	}
}

func TestDecodeFrameUnknownType(t *testing.T) {
	tests := []struct {
		name string
		lead byte
	}{
		{"write command echo", 0x01},
		{"config frame family", 0x04},
		{"arbitrary", 0x7F},
		{"all bits", 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte{tt.lead, 0x0E, 0xB3, 0x0B, 0x02, 0x00, 0x00}
			frame, err := DecodeFrame(data)
			if !errors.Is(err, models.ErrUnknownFrameType) {
				t.Errorf("DecodeFrame() err = %v, want ErrUnknownFrameType", err)
			}
			if frame != nil {
				t.Errorf("DecodeFrame() frame = %v, want nil", frame)
			}
		})
	}
}

func TestDecodeDiscoveryFrame(t *testing.T) {
	tests := []struct {
		name string
		id   []byte
	}{
		{"vendor id", []byte{0x0E, 0xB3, 0x0B, 0x02}},
		{"zero id", []byte{0x00, 0x00, 0x00, 0x00}},
		{"high bytes kept in order", []byte{0xFF, 0x01, 0x80, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte{models.FrameTypeDiscovery}, tt.id...)
			frame, err := DecodeFrame(data)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if !frame.IsDiscovery() {
				t.Errorf("IsDiscovery() = false, want true")
			}
			// Identifier bytes must round-trip exactly, byte for byte
			if !bytes.Equal(frame.SensorID[:], tt.id) {
				t.Errorf("SensorID = % X, want % X", frame.SensorID[:], tt.id)
			}
			if frame.Payload != nil {
				t.Errorf("Payload = % X, want nil for discovery", frame.Payload)
			}
		})
	}
}

func TestDecodeLiveFramePayloadPassthrough(t *testing.T) {
	payload := []byte{0x5E, 0x01, 0xFB, 0x03, 0xAA, 0xBB}
	data := append([]byte{models.FrameTypeLive, 0x0E, 0xFF, 0x47, 0x02}, payload...)

	frame, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if frame.IsDiscovery() {
		t.Errorf("IsDiscovery() = true, want false")
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("Payload = % X, want % X", frame.Payload, payload)
	}

	// The decoded payload must be a copy, not a view of the input
	data[models.FrameHeaderSize] = 0x00
	if frame.Payload[0] != 0x5E {
		t.Errorf("Payload aliases input buffer")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *models.Frame
	}{
		{
			name: "discovery",
			frame: &models.Frame{
				Type:     models.FrameTypeDiscovery,
				SensorID: models.SensorID{0x0E, 0x88, 0x46, 0x02},
			},
		},
		{
			name: "live with payload",
			frame: &models.Frame{
				Type:     models.FrameTypeLive,
				SensorID: models.SensorID{0x0E, 0x61, 0x3A, 0x02},
				Payload:  []byte{0x5E, 0x01, 0xFB, 0x00},
			},
		},
		{
			name: "live with vendor trailer",
			frame: &models.Frame{
				Type:     models.FrameTypeLive,
				SensorID: models.SensorID{0x0E, 0xB3, 0x0B, 0x02},
				Payload:  []byte{0x10, 0x02, 0x4B, 0x02, 0xDE, 0xAD, 0xBE, 0xEF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeFrame(tt.frame)
			decoded, err := DecodeFrame(encoded)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if decoded.Type != tt.frame.Type {
				t.Errorf("Type = 0x%02X, want 0x%02X", decoded.Type, tt.frame.Type)
			}
			if decoded.SensorID != tt.frame.SensorID {
				t.Errorf("SensorID = %v, want %v", decoded.SensorID, tt.frame.SensorID)
			}
			if len(tt.frame.Payload) > 0 && !bytes.Equal(decoded.Payload, tt.frame.Payload) {
				t.Errorf("Payload = % X, want % X", decoded.Payload, tt.frame.Payload)
			}
		})
	}
}

func TestEncodeFrameNil(t *testing.T) {
	if data := EncodeFrame(nil); data != nil {
		t.Errorf("EncodeFrame(nil) = % X, want nil", data)
	}
}
