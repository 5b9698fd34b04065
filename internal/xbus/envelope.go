package xbus

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame layout constants.
const (
	Preamble  = 0xFA // start-of-frame marker
	BusMaster = 0xFF // bus id the host uses on outbound messages

	lengthExtender = 0xFF // length byte escaping to the 16-bit form

	offsetBusID      = 1
	offsetMessageID  = 2
	offsetLength     = 3
	offsetPayload    = 4
	offsetPayloadExt = 6

	// MinFrameSize is the size of the smallest legal frame: preamble,
	// bus id, message id, length byte 0, checksum.
	MinFrameSize = 5

	// MaxPayloadSize is the largest payload the 16-bit extended length
	// field can describe.
	MaxPayloadSize = 0xFFFF
)

var (
	ErrFrameTooShort   = errors.New("xbus: frame too short")
	ErrInvalidPreamble = errors.New("xbus: invalid preamble")
	ErrChecksum        = errors.New("xbus: checksum mismatch")
)

// Envelope is the decoded outer structure of a frame. Payload is a view
// into the frame buffer, not a copy.
type Envelope struct {
	BusID     byte
	ID        MessageID
	Payload   []byte
	RawLength int // total frame size including preamble and checksum
}

// frameLength returns the total frame size implied by the length field of
// a frame prefix, and whether the prefix holds enough bytes to resolve it.
// Needs 4 bytes for the direct form, 6 for the extended form.
func frameLength(prefix []byte) (int, bool) {
	if len(prefix) < offsetPayload {
		return 0, false
	}
	if prefix[offsetLength] != lengthExtender {
		return int(prefix[offsetLength]) + 5, true
	}
	if len(prefix) < offsetPayloadExt {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(prefix[offsetPayload:offsetPayloadExt])) + 7, true
}

// DecodeEnvelope decodes the outer message structure of a complete frame.
// It validates the preamble and that the buffer holds the full frame the
// length field describes; it does not verify the checksum (see
// VerifyChecksum).
func DecodeEnvelope(frame []byte) (*Envelope, error) {
	if len(frame) < MinFrameSize {
		return nil, fmt.Errorf("%w: %d bytes (minimum %d)", ErrFrameTooShort, len(frame), MinFrameSize)
	}
	if frame[0] != Preamble {
		return nil, fmt.Errorf("%w: 0x%02X (expected 0x%02X)", ErrInvalidPreamble, frame[0], Preamble)
	}

	total, ok := frameLength(frame)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes, extended length unresolved", ErrFrameTooShort, len(frame))
	}
	if len(frame) < total {
		return nil, fmt.Errorf("%w: %d bytes (frame declares %d)", ErrFrameTooShort, len(frame), total)
	}

	start := offsetPayload
	if frame[offsetLength] == lengthExtender {
		start = offsetPayloadExt
	}
	return &Envelope{
		BusID:     frame[offsetBusID],
		ID:        MessageID(frame[offsetMessageID]),
		Payload:   frame[start : total-1],
		RawLength: total,
	}, nil
}

// String returns a one-line debug rendering of the envelope.
func (e *Envelope) String() string {
	return fmt.Sprintf("Envelope{bus=0x%02X, id=%s, payload=%d bytes}",
		e.BusID, e.ID, len(e.Payload))
}

// NewMessage allocates a frame skeleton with preamble, bus id, message id
// and length field filled in, and zeroed space for payloadLen payload
// bytes plus the checksum. The extended length form is selected when
// payloadLen is 255 or more. Fill the payload via PayloadView, then call
// InsertChecksum.
func NewMessage(busID byte, id MessageID, payloadLen int) []byte {
	var frame []byte
	if payloadLen < int(lengthExtender) {
		frame = make([]byte, payloadLen+5)
		frame[offsetLength] = byte(payloadLen)
	} else {
		frame = make([]byte, payloadLen+7)
		frame[offsetLength] = lengthExtender
		binary.BigEndian.PutUint16(frame[offsetPayload:offsetPayloadExt], uint16(payloadLen))
	}
	frame[0] = Preamble
	frame[offsetBusID] = busID
	frame[offsetMessageID] = byte(id)
	return frame
}

// PayloadView returns the writable payload region of a frame built with
// NewMessage.
func PayloadView(frame []byte) []byte {
	if frame[offsetLength] == lengthExtender {
		return frame[offsetPayloadExt : len(frame)-1]
	}
	return frame[offsetPayload : len(frame)-1]
}

// BuildRawMessage re-encodes a complete frame for transmission to the
// device. The bus id is always forced to BusMaster regardless of the id
// the frame carries, and the checksum is recomputed from scratch; inbound
// frames keep whatever bus id the device sent, outbound frames always
// claim the master id.
func BuildRawMessage(frame []byte) ([]byte, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return nil, err
	}
	return BuildOutbound(env.ID, env.Payload), nil
}

// BuildOutbound builds a complete, checksummed wire frame for an outbound
// command. payload may be nil for commands without one.
func BuildOutbound(id MessageID, payload []byte) []byte {
	frame := NewMessage(BusMaster, id, len(payload))
	copy(PayloadView(frame), payload)
	InsertChecksum(frame)
	return frame
}
