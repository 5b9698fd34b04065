package xbus

import (
	"math"
	"testing"
)

func TestDecodeFP1632_DeviceCaptures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want float64
	}{
		{
			name: "latitude",
			data: []byte{0x64, 0xA6, 0x8A, 0xA8, 0x00, 0x1F},
			want: 31.393166223541,
		},
		{
			name: "longitude",
			data: []byte{0x3A, 0xD0, 0x1E, 0xFC, 0x00, 0x79},
			want: 121.229738174938,
		},
		{
			name: "altitude",
			data: []byte{0xB7, 0x0B, 0x3C, 0xEB, 0x00, 0x38},
			want: 56.715015227674,
		},
		{
			name: "negative velocity x",
			data: []byte{0xFA, 0x7C, 0x28, 0x88, 0xFF, 0xFF},
			want: -0.021542994305,
		},
		{
			name: "positive velocity y",
			data: []byte{0x03, 0x85, 0xF5, 0x88, 0x00, 0x00},
			want: 0.013762803748,
		},
		{
			name: "negative velocity z",
			data: []byte{0xF4, 0xDD, 0xEB, 0x10, 0xFF, 0xFF},
			want: -0.043488796800,
		},
		{
			name: "zero",
			data: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: 0.0,
		},
		{
			name: "one",
			data: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
			want: 1.0,
		},
		{
			name: "minus one",
			data: []byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF},
			want: -1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeFP1632(tt.data)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DecodeFP1632(% X) = %.12f, want %.12f", tt.data, got, tt.want)
			}
		})
	}
}

func TestFP1632_RoundTrip(t *testing.T) {
	values := []float64{
		0.0,
		1.0,
		-1.0,
		0.1,
		0.2,
		0.3,
		-0.5,
		31.393166223541,
		121.229738174938,
		56.715015227674,
		-0.021542994305,
		32767.0,
		-32768.0,
	}

	for _, v := range values {
		var buf [FP1632Size]byte
		EncodeFP1632(buf[:], v)
		got := DecodeFP1632(buf[:])
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("round trip %.12f = %.12f, diff %g", v, got, math.Abs(got-v))
		}
	}
}

func TestAppendFP1632(t *testing.T) {
	dst := AppendFP1632(nil, 1.0)
	dst = AppendFP1632(dst, -1.0)
	if len(dst) != 2*FP1632Size {
		t.Fatalf("AppendFP1632 produced %d bytes, want %d", len(dst), 2*FP1632Size)
	}
	if got := DecodeFP1632(dst[0:6]); got != 1.0 {
		t.Errorf("first value = %v, want 1.0", got)
	}
	if got := DecodeFP1632(dst[6:12]); got != -1.0 {
		t.Errorf("second value = %v, want -1.0", got)
	}
}
