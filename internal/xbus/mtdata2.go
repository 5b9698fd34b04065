package xbus

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataID tags one record inside an MTData2 payload.
type DataID uint16

// Known data identifiers and their exact record sizes. A record whose tag
// is known but whose size differs from the expected one is skipped whole,
// so newer firmware can grow a record without breaking older parsers.
const (
	XDITemperature        DataID = 0x0810 // float32, 4 bytes
	XDIUTCTime            DataID = 0x1010 // packed date/time, 12 bytes
	XDIPacketCounter      DataID = 0x1020 // uint16, 2 bytes
	XDISampleTimeFine     DataID = 0x1060 // uint32, 4 bytes
	XDIQuaternion         DataID = 0x2010 // 4x float32, 16 bytes
	XDIEulerAngles        DataID = 0x2030 // 3x float32, 12 bytes
	XDIBarometricPressure DataID = 0x3010 // uint32 Pa, 4 bytes
	XDIAcceleration       DataID = 0x4020 // 3x float32, 12 bytes
	XDIAltitudeEllipsoid  DataID = 0x5022 // FP16.32, 6 bytes
	XDILatLon             DataID = 0x5042 // 2x FP16.32, 12 bytes
	XDIRateOfTurn         DataID = 0x8020 // 3x float32, 12 bytes
	XDIMagneticField      DataID = 0xC020 // 3x float32, 12 bytes
	XDIVelocityXYZ        DataID = 0xD012 // 3x FP16.32, 18 bytes
	XDIStatusWord         DataID = 0xE020 // uint32 bitmask, 4 bytes
)

// String returns the catalog name for the data identifier.
func (d DataID) String() string {
	switch d {
	case XDITemperature:
		return "Temperature"
	case XDIUTCTime:
		return "UtcTime"
	case XDIPacketCounter:
		return "PacketCounter"
	case XDISampleTimeFine:
		return "SampleTimeFine"
	case XDIQuaternion:
		return "Quaternion"
	case XDIEulerAngles:
		return "EulerAngles"
	case XDIBarometricPressure:
		return "BarometricPressure"
	case XDIAcceleration:
		return "Acceleration"
	case XDIAltitudeEllipsoid:
		return "AltitudeEllipsoid"
	case XDILatLon:
		return "LatLon"
	case XDIRateOfTurn:
		return "RateOfTurn"
	case XDIMagneticField:
		return "MagneticField"
	case XDIVelocityXYZ:
		return "VelocityXYZ"
	case XDIStatusWord:
		return "StatusWord"
	default:
		return fmt.Sprintf("Unknown(0x%04X)", uint16(d))
	}
}

func readFloat32(data []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(data))
}

func readVector3(data []byte) *Vector3 {
	return &Vector3{
		X: readFloat32(data[0:4]),
		Y: readFloat32(data[4:8]),
		Z: readFloat32(data[8:12]),
	}
}

// ParseMTData2 decodes the record sequence of a complete MTData2 frame
// into a SensorSample. The frame must carry the MTData2 message id; the
// checksum is not checked here.
//
// The walk is a single strict forward pass: a record whose declared size
// exceeds the remaining payload ends decoding without failing the call,
// and unknown or wrong-sized records are skipped by their declared size.
func ParseMTData2(frame []byte) (*SensorSample, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return nil, err
	}
	if env.ID != MidMTData2 {
		return nil, fmt.Errorf("xbus: not an MTData2 message: %s", env.ID)
	}

	sample := &SensorSample{}
	payload := env.Payload
	for len(payload) >= 3 {
		id := DataID(binary.BigEndian.Uint16(payload[0:2]))
		size := int(payload[2])
		payload = payload[3:]
		if size > len(payload) {
			break // truncated trailing record, keep what we have
		}
		value := payload[:size]
		payload = payload[size:]

		switch {
		case id == XDIPacketCounter && size == 2:
			pc := binary.BigEndian.Uint16(value)
			sample.PacketCounter = &pc
		case id == XDISampleTimeFine && size == 4:
			stf := binary.BigEndian.Uint32(value)
			sample.SampleTimeFine = &stf
		case id == XDIEulerAngles && size == 12:
			sample.Euler = &EulerAngles{
				Roll:  readFloat32(value[0:4]),
				Pitch: readFloat32(value[4:8]),
				Yaw:   readFloat32(value[8:12]),
			}
		case id == XDIStatusWord && size == 4:
			status := binary.BigEndian.Uint32(value)
			sample.StatusWord = &status
		case id == XDILatLon && size == 12:
			sample.Position = &LatLon{
				Latitude:  DecodeFP1632(value[0:6]),
				Longitude: DecodeFP1632(value[6:12]),
			}
		case id == XDIAltitudeEllipsoid && size == 6:
			alt := DecodeFP1632(value)
			sample.Altitude = &alt
		case id == XDIVelocityXYZ && size == 18:
			sample.Velocity = &VelocityXYZ{
				X: DecodeFP1632(value[0:6]),
				Y: DecodeFP1632(value[6:12]),
				Z: DecodeFP1632(value[12:18]),
			}
		case id == XDIUTCTime && size == 12:
			sample.UTC = &UTCTime{
				Nanoseconds: binary.BigEndian.Uint32(value[0:4]),
				Year:        binary.BigEndian.Uint16(value[4:6]),
				Month:       value[6],
				Day:         value[7],
				Hour:        value[8],
				Minute:      value[9],
				Second:      value[10],
				Flags:       value[11],
			}
		case id == XDIQuaternion && size == 16:
			sample.Quat = &Quaternion{
				W: readFloat32(value[0:4]),
				X: readFloat32(value[4:8]),
				Y: readFloat32(value[8:12]),
				Z: readFloat32(value[12:16]),
			}
		case id == XDIBarometricPressure && size == 4:
			p := binary.BigEndian.Uint32(value)
			sample.Pressure = &p
		case id == XDIAcceleration && size == 12:
			sample.Acceleration = readVector3(value)
		case id == XDIRateOfTurn && size == 12:
			sample.RateOfTurn = readVector3(value)
		case id == XDIMagneticField && size == 12:
			sample.MagneticField = readVector3(value)
		case id == XDITemperature && size == 4:
			t := readFloat32(value)
			sample.Temperature = &t
		default:
			// Unknown tag, or known tag with an unexpected size: the
			// declared size was already consumed above.
		}
	}
	return sample, nil
}
