package xbus

import (
	"encoding/binary"
	"fmt"
)

// ParseDeviceID extracts the 32-bit device id from a DeviceID reply frame.
func ParseDeviceID(frame []byte) (uint32, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return 0, err
	}
	if env.ID != MidDeviceID {
		return 0, fmt.Errorf("xbus: not a DeviceID message: %s", env.ID)
	}
	if len(env.Payload) < 4 {
		return 0, fmt.Errorf("xbus: DeviceID payload too short: %d bytes", len(env.Payload))
	}
	return binary.BigEndian.Uint32(env.Payload[0:4]), nil
}

// ParseFirmwareRevision extracts the firmware version from a
// FirmwareRevision reply frame, rendered major.minor.patch.
func ParseFirmwareRevision(frame []byte) (string, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return "", err
	}
	if env.ID != MidFirmwareRevision {
		return "", fmt.Errorf("xbus: not a FirmwareRevision message: %s", env.ID)
	}
	if len(env.Payload) < 3 {
		return "", fmt.Errorf("xbus: FirmwareRevision payload too short: %d bytes", len(env.Payload))
	}
	return fmt.Sprintf("%d.%d.%d", env.Payload[0], env.Payload[1], env.Payload[2]), nil
}

// ParseError extracts the error code from an Error frame.
func ParseError(frame []byte) (byte, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return 0, err
	}
	if env.ID != MidError {
		return 0, fmt.Errorf("xbus: not an Error message: %s", env.ID)
	}
	if len(env.Payload) < 1 {
		return 0, fmt.Errorf("xbus: Error payload is empty")
	}
	return env.Payload[0], nil
}

// MessageToString renders a one-line human summary of any complete frame.
// Known reply payloads are decoded; everything else falls back to the
// message name and payload size.
func MessageToString(frame []byte) string {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return fmt.Sprintf("invalid frame: %v", err)
	}

	switch env.ID {
	case MidDeviceID:
		if id, err := ParseDeviceID(frame); err == nil {
			return fmt.Sprintf("DeviceID: 0x%08X", id)
		}
	case MidFirmwareRevision:
		if rev, err := ParseFirmwareRevision(frame); err == nil {
			return "FirmwareRevision: " + rev
		}
	case MidError:
		if code, err := ParseError(frame); err == nil {
			return fmt.Sprintf("Error: code 0x%02X", code)
		}
	case MidMTData2:
		if sample, err := ParseMTData2(frame); err == nil {
			return "MTData2: " + sample.String()
		}
	}

	if len(env.Payload) == 0 {
		return env.ID.String()
	}
	return fmt.Sprintf("%s (%d byte payload)", env.ID, len(env.Payload))
}
