package xbus

import (
	"encoding/binary"
	"math"
)

// FP16.32 is a 48-bit fixed-point format with 16 integer bits and 32
// fractional bits, transmitted fractional part first:
//
//	{frac[31:24], frac[23:16], frac[15:8], frac[7:0], int[15:8], int[7:0]}
//
// Representable range is [-32768.0, 32767.9999999998]. The device uses it
// for position, altitude and velocity outputs.

// FP1632Size is the wire size of one FP16.32 value.
const FP1632Size = 6

// DecodeFP1632 converts a 6-byte FP16.32 value to a float64.
// data must hold at least FP1632Size bytes.
func DecodeFP1632(data []byte) float64 {
	frac := binary.BigEndian.Uint32(data[0:4])
	whole := int16(binary.BigEndian.Uint16(data[4:6]))

	// Assemble the signed 48-bit value in 64-bit integer space so no
	// fractional bits are lost before the final division.
	fixed := int64(whole)<<32 | int64(frac)&0xffffffff
	return float64(fixed) / 4294967296.0 // 2^32
}

// EncodeFP1632 writes value into data as a 6-byte FP16.32 value.
// It is the inverse of DecodeFP1632: scaled = round(value * 2^32), split
// into the fractional and integer fields. Behavior outside the
// representable range is undefined by the device protocol.
func EncodeFP1632(data []byte, value float64) {
	fixed := int64(math.Round(value * 4294967296.0))
	binary.BigEndian.PutUint32(data[0:4], uint32(fixed&0xffffffff))
	binary.BigEndian.PutUint16(data[4:6], uint16(fixed>>32))
}

// AppendFP1632 appends the FP16.32 encoding of value to dst.
func AppendFP1632(dst []byte, value float64) []byte {
	var buf [FP1632Size]byte
	EncodeFP1632(buf[:], value)
	return append(dst, buf[:]...)
}
