package xbus

import (
	"fmt"
	"strings"
)

// Status word flag bits.
const (
	StatusSelfTest    = 1 << 0
	StatusFilterValid = 1 << 1
	StatusGNSSFix     = 1 << 2
)

// EulerAngles is an orientation in degrees.
type EulerAngles struct {
	Roll  float32 `json:"roll"`
	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
}

// LatLon is a WGS84 position in degrees.
type LatLon struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VelocityXYZ is a velocity vector in m/s.
type VelocityXYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// UTCTime is the packed date/time record the device emits.
type UTCTime struct {
	Nanoseconds uint32 `json:"nanoseconds"`
	Year        uint16 `json:"year"`
	Month       uint8  `json:"month"`
	Day         uint8  `json:"day"`
	Hour        uint8  `json:"hour"`
	Minute      uint8  `json:"minute"`
	Second      uint8  `json:"second"`
	Flags       uint8  `json:"flags"`
}

// Quaternion is an orientation quaternion, W first.
type Quaternion struct {
	W float32 `json:"w"`
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Vector3 is a float32 triple; used for acceleration (m/s²), rate of turn
// (rad/s) and magnetic field (arbitrary units).
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// SensorSample aggregates the fields of one MTData2 message. Every field
// group is independently present or absent: a nil pointer means the device
// did not emit that record, never that the value was zero.
type SensorSample struct {
	PacketCounter  *uint16      `json:"packet_counter,omitempty"`
	SampleTimeFine *uint32      `json:"sample_time_fine,omitempty"`
	Euler          *EulerAngles `json:"euler,omitempty"`
	StatusWord     *uint32      `json:"status_word,omitempty"`
	Position       *LatLon      `json:"position,omitempty"`
	Altitude       *float64     `json:"altitude,omitempty"`
	Velocity       *VelocityXYZ `json:"velocity,omitempty"`
	UTC            *UTCTime     `json:"utc,omitempty"`
	Quat           *Quaternion  `json:"quaternion,omitempty"`
	Pressure       *uint32      `json:"pressure,omitempty"`
	Acceleration   *Vector3     `json:"acceleration,omitempty"`
	RateOfTurn     *Vector3     `json:"rate_of_turn,omitempty"`
	MagneticField  *Vector3     `json:"magnetic_field,omitempty"`
	Temperature    *float32     `json:"temperature,omitempty"`
}

// FormatStatusWord renders a status word as 8 hex digits followed by the
// named flags that are set.
func FormatStatusWord(status uint32) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "0x%08X", status)
	if status&StatusSelfTest != 0 {
		sb.WriteString(" [SelfTest]")
	}
	if status&StatusFilterValid != 0 {
		sb.WriteString(" [FilterValid]")
	}
	if status&StatusGNSSFix != 0 {
		sb.WriteString(" [GNSSFix]")
	}
	return sb.String()
}

// String renders only the present fields, comma-joined, in catalog order.
// The output is deterministic for a given sample.
func (s *SensorSample) String() string {
	parts := make([]string, 0, 8)
	if s.PacketCounter != nil {
		parts = append(parts, fmt.Sprintf("PC=%d", *s.PacketCounter))
	}
	if s.SampleTimeFine != nil {
		parts = append(parts, fmt.Sprintf("STF=%d", *s.SampleTimeFine))
	}
	if s.Euler != nil {
		parts = append(parts, fmt.Sprintf("Euler(R=%.2f°, P=%.2f°, Y=%.2f°)",
			s.Euler.Roll, s.Euler.Pitch, s.Euler.Yaw))
	}
	if s.StatusWord != nil {
		parts = append(parts, "Status="+FormatStatusWord(*s.StatusWord))
	}
	if s.Position != nil {
		parts = append(parts, fmt.Sprintf("LatLon(%.8f, %.8f)",
			s.Position.Latitude, s.Position.Longitude))
	}
	if s.Altitude != nil {
		parts = append(parts, fmt.Sprintf("Alt=%.3fm", *s.Altitude))
	}
	if s.Velocity != nil {
		parts = append(parts, fmt.Sprintf("Vel(%.4f, %.4f, %.4f)m/s",
			s.Velocity.X, s.Velocity.Y, s.Velocity.Z))
	}
	if s.UTC != nil {
		parts = append(parts, fmt.Sprintf("UTC=%04d-%02d-%02dT%02d:%02d:%02d.%09dZ",
			s.UTC.Year, s.UTC.Month, s.UTC.Day,
			s.UTC.Hour, s.UTC.Minute, s.UTC.Second, s.UTC.Nanoseconds))
	}
	if s.Quat != nil {
		parts = append(parts, fmt.Sprintf("Quat(%.6f, %.6f, %.6f, %.6f)",
			s.Quat.W, s.Quat.X, s.Quat.Y, s.Quat.Z))
	}
	if s.Pressure != nil {
		parts = append(parts, fmt.Sprintf("Baro=%.2fhPa", float64(*s.Pressure)/100.0))
	}
	if s.Acceleration != nil {
		parts = append(parts, fmt.Sprintf("Acc=(%.6f, %.6f, %.6f)m/s²",
			s.Acceleration.X, s.Acceleration.Y, s.Acceleration.Z))
	}
	if s.RateOfTurn != nil {
		parts = append(parts, fmt.Sprintf("RoT=(%.6f, %.6f, %.6f)rad/s",
			s.RateOfTurn.X, s.RateOfTurn.Y, s.RateOfTurn.Z))
	}
	if s.MagneticField != nil {
		parts = append(parts, fmt.Sprintf("Mag=(%.6f, %.6f, %.6f)a.u.",
			s.MagneticField.X, s.MagneticField.Y, s.MagneticField.Z))
	}
	if s.Temperature != nil {
		parts = append(parts, fmt.Sprintf("Temp=%.6f°C", *s.Temperature))
	}
	return strings.Join(parts, ", ")
}
