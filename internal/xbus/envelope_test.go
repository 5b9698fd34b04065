package xbus

import (
	"bytes"
	"errors"
	"testing"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	payloadLens := []int{0, 1, 254, 255, 256, 4096, MaxPayloadSize}

	for _, n := range payloadLens {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		frame := BuildOutbound(MidMTData2, payload)

		wantLen := n + 5
		if n >= 255 {
			wantLen = n + 7
		}
		if len(frame) != wantLen {
			t.Errorf("payload %d: frame is %d bytes, want %d", n, len(frame), wantLen)
		}
		if !VerifyChecksum(frame) {
			t.Errorf("payload %d: built frame fails checksum", n)
		}

		env, err := DecodeEnvelope(frame)
		if err != nil {
			t.Fatalf("payload %d: DecodeEnvelope: %v", n, err)
		}
		if env.BusID != BusMaster {
			t.Errorf("payload %d: bus id 0x%02X, want 0x%02X", n, env.BusID, BusMaster)
		}
		if env.ID != MidMTData2 {
			t.Errorf("payload %d: id %s, want MTData2", n, env.ID)
		}
		if !bytes.Equal(env.Payload, payload) {
			t.Errorf("payload %d: payload mismatch", n)
		}
		if env.RawLength != wantLen {
			t.Errorf("payload %d: RawLength %d, want %d", n, env.RawLength, wantLen)
		}
	}
}

func TestEnvelope_ExtendedLengthBoundary(t *testing.T) {
	// 254 bytes is the largest direct-length payload, 255 the smallest
	// extended one.
	direct := BuildOutbound(MidMTData2, make([]byte, 254))
	if direct[offsetLength] != 254 {
		t.Errorf("254-byte payload used length byte 0x%02X", direct[offsetLength])
	}
	extended := BuildOutbound(MidMTData2, make([]byte, 255))
	if extended[offsetLength] != lengthExtender {
		t.Errorf("255-byte payload did not use the extended length form")
	}
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		wantErr error
	}{
		{
			name:    "too short",
			frame:   []byte{0xFA, 0xFF, 0x3E, 0x00},
			wantErr: ErrFrameTooShort,
		},
		{
			name:    "bad preamble",
			frame:   []byte{0xFB, 0xFF, 0x3E, 0x00, 0xC3},
			wantErr: ErrInvalidPreamble,
		},
		{
			name:    "declared length exceeds buffer",
			frame:   []byte{0xFA, 0xFF, 0x36, 0x10, 0x00},
			wantErr: ErrFrameTooShort,
		},
		{
			name:    "extended length unresolved",
			frame:   []byte{0xFA, 0xFF, 0x36, 0xFF, 0x01},
			wantErr: ErrFrameTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope(tt.frame)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeEnvelope() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildRawMessage_ForcesMasterBusID(t *testing.T) {
	// Inbound frames carry the device's own bus id; rebuilding one for
	// transmission must stamp the master id and a fresh checksum.
	inbound := NewMessage(0x01, MidGotoConfig, 0)
	InsertChecksum(inbound)

	out, err := BuildRawMessage(inbound)
	if err != nil {
		t.Fatalf("BuildRawMessage: %v", err)
	}
	if out[offsetBusID] != BusMaster {
		t.Errorf("bus id 0x%02X, want 0x%02X", out[offsetBusID], BusMaster)
	}
	if !VerifyChecksum(out) {
		t.Error("rebuilt frame fails checksum")
	}

	want := []byte{0xFA, 0xFF, 0x30, 0x00, 0xD1}
	if !bytes.Equal(out, want) {
		t.Errorf("rebuilt frame = % X, want % X", out, want)
	}
}

func TestBuildRawMessage_RejectsInvalid(t *testing.T) {
	if _, err := BuildRawMessage([]byte{0x00, 0xFF, 0x30, 0x00, 0xD1}); err == nil {
		t.Error("BuildRawMessage accepted a frame without preamble")
	}
}

func TestPayloadView(t *testing.T) {
	frame := NewMessage(BusMaster, MidSetOutputConfig, 4)
	view := PayloadView(frame)
	if len(view) != 4 {
		t.Fatalf("PayloadView is %d bytes, want 4", len(view))
	}
	copy(view, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	if !bytes.Equal(frame[offsetPayload:offsetPayload+4], []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Error("PayloadView does not alias the frame buffer")
	}
}
