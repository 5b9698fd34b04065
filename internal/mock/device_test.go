package mock

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/muurk/xbusd/internal/xbus"
)

func TestTelemetryFrame_Decodes(t *testing.T) {
	frame := TelemetryFrame(42, 1.5)

	if !xbus.VerifyChecksum(frame) {
		t.Fatal("generated frame fails checksum")
	}

	sample, err := xbus.ParseMTData2(frame)
	if err != nil {
		t.Fatalf("ParseMTData2: %v", err)
	}

	if sample.PacketCounter == nil || *sample.PacketCounter != 42 {
		t.Errorf("PacketCounter = %v, want 42", sample.PacketCounter)
	}
	if sample.SampleTimeFine == nil || *sample.SampleTimeFine != 15000 {
		t.Errorf("SampleTimeFine = %v, want 15000", sample.SampleTimeFine)
	}
	if sample.Euler == nil {
		t.Fatal("Euler missing")
	}
	if math.Abs(float64(sample.Euler.Roll)) > rollAmplitudeDeg {
		t.Errorf("roll %v exceeds amplitude", sample.Euler.Roll)
	}
	if sample.StatusWord == nil || *sample.StatusWord != mockStatus {
		t.Errorf("StatusWord = %v", sample.StatusWord)
	}
	if sample.Position == nil || math.Abs(sample.Position.Latitude-31.393166) > 0.001 {
		t.Errorf("Position = %+v", sample.Position)
	}
	if sample.Quat == nil {
		t.Fatal("Quaternion missing")
	}
	norm := math.Sqrt(float64(sample.Quat.W*sample.Quat.W +
		sample.Quat.X*sample.Quat.X +
		sample.Quat.Y*sample.Quat.Y +
		sample.Quat.Z*sample.Quat.Z))
	if math.Abs(norm-1.0) > 1e-3 {
		t.Errorf("quaternion norm = %v, want 1", norm)
	}
	if sample.Temperature == nil {
		t.Error("Temperature missing")
	}
	if sample.Altitude == nil {
		t.Error("Altitude missing")
	}
}

func TestDevice_SequenceAdvances(t *testing.T) {
	d := NewDevice(50)

	f1, err := xbus.ParseMTData2(d.NextFrame())
	if err != nil {
		t.Fatal(err)
	}
	f2, err := xbus.ParseMTData2(d.NextFrame())
	if err != nil {
		t.Fatal(err)
	}

	if *f2.PacketCounter != *f1.PacketCounter+1 {
		t.Errorf("packet counter did not advance: %d then %d",
			*f1.PacketCounter, *f2.PacketCounter)
	}
}

func TestDevice_RunEmitsFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan []byte, 8)
	go NewDevice(100).Run(ctx, out)

	select {
	case frame := <-out:
		if !xbus.VerifyChecksum(frame) {
			t.Error("streamed frame fails checksum")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame emitted")
	}

	cancel()
	// The channel must close after cancellation.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name    string
		request []byte
		wantID  xbus.MessageID
		wantNil bool
	}{
		{
			name:    "device id request",
			request: xbus.BuildOutbound(xbus.MidReqDeviceID, nil),
			wantID:  xbus.MidDeviceID,
		},
		{
			name:    "firmware request",
			request: xbus.BuildOutbound(xbus.MidReqFirmwareRevision, nil),
			wantID:  xbus.MidFirmwareRevision,
		},
		{
			name:    "goto config",
			request: xbus.BuildOutbound(xbus.MidGotoConfig, nil),
			wantID:  xbus.MidGotoConfigAck,
		},
		{
			name:    "goto measurement",
			request: xbus.BuildOutbound(xbus.MidGotoMeasurement, nil),
			wantID:  xbus.MidGotoMeasurementAck,
		},
		{
			name:    "unmodeled command",
			request: xbus.BuildOutbound(xbus.MidToggleIOPins, nil),
			wantNil: true,
		},
		{
			name:    "corrupt request",
			request: []byte{0xFA, 0xFF, 0x00, 0x00, 0x00},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := Respond(tt.request)
			if tt.wantNil {
				if reply != nil {
					t.Errorf("Respond() = % X, want nil", reply)
				}
				return
			}
			if reply == nil {
				t.Fatal("Respond() = nil")
			}
			if !xbus.VerifyChecksum(reply) {
				t.Error("reply fails checksum")
			}
			env, err := xbus.DecodeEnvelope(reply)
			if err != nil {
				t.Fatalf("DecodeEnvelope: %v", err)
			}
			if env.ID != tt.wantID {
				t.Errorf("reply id = %s, want %s", env.ID, tt.wantID)
			}
		})
	}
}
