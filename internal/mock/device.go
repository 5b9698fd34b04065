package mock

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/muurk/xbusd/internal/xbus"
)

const (
	rollAmplitudeDeg  = 35.0
	pitchAmplitudeDeg = 25.0
	yawAmplitudeDeg   = 40.0

	rollFreqHz  = 0.23
	pitchFreqHz = 0.31
	yawFreqHz   = 0.17

	rollPhaseRad  = 0.0
	pitchPhaseRad = math.Pi / 3.0
	yawPhaseRad   = 2.0 * math.Pi / 3.0

	// Status word with self test and filter valid set, no GNSS fix.
	mockStatus = xbus.StatusSelfTest | xbus.StatusFilterValid
)

// Device generates a synthetic telemetry stream.
type Device struct {
	hz    int
	start time.Time
	seq   uint16
}

// NewDevice creates a mock device emitting hz frames per second.
func NewDevice(hz int) *Device {
	if hz <= 0 {
		hz = 50
	}
	return &Device{hz: hz, start: time.Now()}
}

// Run emits telemetry frames on out until ctx is cancelled. The channel
// is closed on return, matching the transport contract.
func (d *Device) Run(ctx context.Context, out chan<- []byte) {
	defer close(out)

	interval := time.Second / time.Duration(d.hz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := d.NextFrame()
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

// NextFrame builds the next telemetry frame in the sequence.
func (d *Device) NextFrame() []byte {
	t := time.Since(d.start).Seconds()
	frame := TelemetryFrame(d.seq, t)
	d.seq++
	return frame
}

// TelemetryFrame builds one complete, checksummed MTData2 frame for a
// simulated attitude at time t seconds.
func TelemetryFrame(seq uint16, t float64) []byte {
	roll, pitch, yaw := eulerAngles(t)
	w, x, y, z := quaternion(roll, pitch, yaw)

	var payload []byte

	payload = appendRecord(payload, xbus.XDIPacketCounter, func(b []byte) []byte {
		return binary.BigEndian.AppendUint16(b, seq)
	})
	payload = appendRecord(payload, xbus.XDISampleTimeFine, func(b []byte) []byte {
		// 10 kHz tick, matching the fine sample clock of real units.
		return binary.BigEndian.AppendUint32(b, uint32(t*10000))
	})
	payload = appendRecord(payload, xbus.XDIEulerAngles, func(b []byte) []byte {
		b = appendFloat32(b, float32(roll))
		b = appendFloat32(b, float32(pitch))
		return appendFloat32(b, float32(yaw))
	})
	payload = appendRecord(payload, xbus.XDIQuaternion, func(b []byte) []byte {
		b = appendFloat32(b, float32(w))
		b = appendFloat32(b, float32(x))
		b = appendFloat32(b, float32(y))
		return appendFloat32(b, float32(z))
	})
	payload = appendRecord(payload, xbus.XDIStatusWord, func(b []byte) []byte {
		return binary.BigEndian.AppendUint32(b, mockStatus)
	})
	payload = appendRecord(payload, xbus.XDILatLon, func(b []byte) []byte {
		b = xbus.AppendFP1632(b, 31.393166+0.00001*math.Sin(0.05*t))
		return xbus.AppendFP1632(b, 121.229738+0.00001*math.Cos(0.05*t))
	})
	payload = appendRecord(payload, xbus.XDIAltitudeEllipsoid, func(b []byte) []byte {
		return xbus.AppendFP1632(b, 56.7+0.2*math.Sin(0.1*t))
	})
	payload = appendRecord(payload, xbus.XDITemperature, func(b []byte) []byte {
		return appendFloat32(b, float32(36.5+0.5*math.Sin(0.01*t)))
	})

	return xbus.BuildOutbound(xbus.MidMTData2, payload)
}

// Respond builds the reply a real device would send for a host command,
// or nil for commands the mock does not model.
func Respond(frame []byte) []byte {
	env, err := xbus.DecodeEnvelope(frame)
	if err != nil || !xbus.VerifyChecksum(frame) {
		return nil
	}

	switch env.ID {
	case xbus.MidReqDeviceID:
		return xbus.BuildOutbound(xbus.MidDeviceID, []byte{0x02, 0x58, 0x13, 0x37})
	case xbus.MidReqFirmwareRevision:
		return xbus.BuildOutbound(xbus.MidFirmwareRevision, []byte{1, 8, 2})
	case xbus.MidGotoConfig:
		return xbus.BuildOutbound(xbus.MidGotoConfigAck, nil)
	case xbus.MidGotoMeasurement:
		return xbus.BuildOutbound(xbus.MidGotoMeasurementAck, nil)
	case xbus.MidReset:
		return xbus.BuildOutbound(xbus.MidResetAck, nil)
	default:
		return nil
	}
}

func appendRecord(payload []byte, id xbus.DataID, fill func([]byte) []byte) []byte {
	payload = binary.BigEndian.AppendUint16(payload, uint16(id))
	payload = append(payload, 0) // size, patched below
	sizeIdx := len(payload) - 1
	payload = fill(payload)
	payload[sizeIdx] = byte(len(payload) - sizeIdx - 1)
	return payload
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(v))
}

func eulerAngles(t float64) (roll, pitch, yaw float64) {
	roll = rollAmplitudeDeg * math.Sin(2.0*math.Pi*rollFreqHz*t+rollPhaseRad)
	pitch = pitchAmplitudeDeg * math.Sin(2.0*math.Pi*pitchFreqHz*t+pitchPhaseRad)
	yaw = yawAmplitudeDeg * math.Sin(2.0*math.Pi*yawFreqHz*t+yawPhaseRad)
	return
}

// quaternion converts ZYX intrinsic Euler angles in degrees to a unit
// quaternion.
func quaternion(rollDeg, pitchDeg, yawDeg float64) (w, x, y, z float64) {
	roll := rollDeg * math.Pi / 180.0
	pitch := pitchDeg * math.Pi / 180.0
	yaw := yawDeg * math.Pi / 180.0

	cr := math.Cos(roll * 0.5)
	sr := math.Sin(roll * 0.5)
	cp := math.Cos(pitch * 0.5)
	sp := math.Sin(pitch * 0.5)
	cy := math.Cos(yaw * 0.5)
	sy := math.Sin(yaw * 0.5)

	w = cr*cp*cy + sr*sp*sy
	x = sr*cp*cy - cr*sp*sy
	y = cr*sp*cy + sr*cp*sy
	z = cr*cp*sy - sr*sp*cy

	norm := math.Sqrt(w*w + x*x + y*y + z*z)
	if norm == 0 {
		return 1, 0, 0, 0
	}
	return w / norm, x / norm, y / norm, z / norm
}
