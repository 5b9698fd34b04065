package xbus

import "fmt"

// MessageID identifies an Xbus message type. The catalog is closed; ids
// received outside it render as Unknown(0x..) and their payloads are
// passed through opaque, never parsed.
type MessageID byte

// Known message ids.
const (
	MidReqDeviceID         MessageID = 0x00
	MidDeviceID            MessageID = 0x01
	MidGotoMeasurement     MessageID = 0x10
	MidGotoMeasurementAck  MessageID = 0x11
	MidReqFirmwareRevision MessageID = 0x12
	MidFirmwareRevision    MessageID = 0x13
	MidGotoConfig          MessageID = 0x30
	MidGotoConfigAck       MessageID = 0x31
	MidMTData2             MessageID = 0x36
	MidWakeup              MessageID = 0x3E
	MidWakeupAck           MessageID = 0x3F
	MidReset               MessageID = 0x40
	MidResetAck            MessageID = 0x41
	MidError               MessageID = 0x42
	MidToggleIOPins        MessageID = 0xBE
	MidToggleIOPinsAck     MessageID = 0xBF
	MidSetOutputConfig     MessageID = 0xC0
	MidOutputConfig        MessageID = 0xC1
	MidGotoBootloader      MessageID = 0xF0
	MidGotoBootloaderAck   MessageID = 0xF1
	MidFirmwareUpdate      MessageID = 0xF2
)

// Known reports whether the id is part of the message catalog.
func (m MessageID) Known() bool {
	switch m {
	case MidReqDeviceID, MidDeviceID,
		MidGotoMeasurement, MidGotoMeasurementAck,
		MidReqFirmwareRevision, MidFirmwareRevision,
		MidGotoConfig, MidGotoConfigAck,
		MidMTData2,
		MidWakeup, MidWakeupAck,
		MidReset, MidResetAck,
		MidError,
		MidToggleIOPins, MidToggleIOPinsAck,
		MidSetOutputConfig, MidOutputConfig,
		MidGotoBootloader, MidGotoBootloaderAck,
		MidFirmwareUpdate:
		return true
	default:
		return false
	}
}

// String returns the catalog name for the id, or Unknown(0x..) for ids
// outside the catalog.
func (m MessageID) String() string {
	switch m {
	case MidReqDeviceID:
		return "ReqDeviceID"
	case MidDeviceID:
		return "DeviceID"
	case MidGotoMeasurement:
		return "GotoMeasurement"
	case MidGotoMeasurementAck:
		return "GotoMeasurementAck"
	case MidReqFirmwareRevision:
		return "ReqFirmwareRevision"
	case MidFirmwareRevision:
		return "FirmwareRevision"
	case MidGotoConfig:
		return "GotoConfig"
	case MidGotoConfigAck:
		return "GotoConfigAck"
	case MidMTData2:
		return "MTData2"
	case MidWakeup:
		return "Wakeup"
	case MidWakeupAck:
		return "WakeupAck"
	case MidReset:
		return "Reset"
	case MidResetAck:
		return "ResetAck"
	case MidError:
		return "Error"
	case MidToggleIOPins:
		return "ToggleIOPins"
	case MidToggleIOPinsAck:
		return "ToggleIOPinsAck"
	case MidSetOutputConfig:
		return "SetOutputConfig"
	case MidOutputConfig:
		return "OutputConfig"
	case MidGotoBootloader:
		return "GotoBootloader"
	case MidGotoBootloaderAck:
		return "GotoBootloaderAck"
	case MidFirmwareUpdate:
		return "FirmwareUpdate"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(m))
	}
}
