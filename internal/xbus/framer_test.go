package xbus

import (
	"bytes"
	"testing"
)

func collectFrames(f *Framer, stream []byte) [][]byte {
	var frames [][]byte
	f.Push(stream, func(frame []byte) {
		frames = append(frames, frame)
	})
	return frames
}

func TestFramer_TwoFramesWithJunkBetween(t *testing.T) {
	first := BuildOutbound(MidGotoConfigAck, nil)
	second := BuildOutbound(MidMTData2, []byte{0x10, 0x20, 0x02, 0x0B, 0x0A})

	var stream []byte
	stream = append(stream, first...)
	stream = append(stream, 0x00, 0x13, 0x37, 0x00, 0x42) // line noise
	stream = append(stream, second...)

	frames := collectFrames(NewFramer(), stream)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if !bytes.Equal(frames[0], first) {
		t.Errorf("first frame = % X, want % X", frames[0], first)
	}
	if !bytes.Equal(frames[1], second) {
		t.Errorf("second frame = % X, want % X", frames[1], second)
	}
}

func TestFramer_StartsMidFrame(t *testing.T) {
	frame := BuildOutbound(MidWakeupAck, nil)
	// Tail of a previous frame before the first complete one.
	stream := append([]byte{0x36, 0x0C, 0x10, 0x20}, frame...)

	frames := collectFrames(NewFramer(), stream)
	if len(frames) != 1 || !bytes.Equal(frames[0], frame) {
		t.Fatalf("got %v, want the single complete frame", frames)
	}
}

func TestFramer_ByteAtATime(t *testing.T) {
	frame := BuildOutbound(MidMTData2, bytes.Repeat([]byte{0xAB}, 300))
	f := NewFramer()

	for i, b := range frame {
		got, ok := f.Step(b)
		if i < len(frame)-1 {
			if ok {
				t.Fatalf("frame completed early at byte %d", i)
			}
			continue
		}
		if !ok {
			t.Fatal("frame did not complete on its last byte")
		}
		if !bytes.Equal(got, frame) {
			t.Errorf("reassembled frame differs from input")
		}
	}
}

func TestFramer_RejectsOversizedLength(t *testing.T) {
	f := NewFramer(WithMaxFrameSize(64))

	// Declared payload of 100 bytes exceeds the 64-byte ceiling.
	frames := collectFrames(f, []byte{0xFA, 0xFF, 0x36, 100})
	if len(frames) != 0 {
		t.Fatal("oversized frame was emitted")
	}
	if f.Resyncs() != 1 {
		t.Errorf("Resyncs() = %d, want 1", f.Resyncs())
	}

	// The framer must be usable again immediately.
	good := BuildOutbound(MidWakeup, nil)
	frames = collectFrames(f, good)
	if len(frames) != 1 || !bytes.Equal(frames[0], good) {
		t.Error("framer did not recover after rejecting a bad length")
	}
}

func TestFramer_ExtendedLengthOverCeiling(t *testing.T) {
	f := NewFramer(WithMaxFrameSize(32))

	// An extended length of 0xFFFF must be dropped the moment it resolves.
	stream := []byte{0xFA}
	stream = append(stream, bytes.Repeat([]byte{0xFF}, 64)...)
	frames := collectFrames(f, stream)
	if len(frames) != 0 {
		t.Fatal("oversized extended frame was emitted")
	}
	if f.Resyncs() == 0 {
		t.Error("rejection did not count as a resync")
	}
}

func TestFramer_EmittedFrameIsACopy(t *testing.T) {
	frame := BuildOutbound(MidGotoMeasurementAck, nil)
	f := NewFramer()

	var got []byte
	f.Push(frame, func(fr []byte) { got = fr })
	if got == nil {
		t.Fatal("no frame emitted")
	}

	// Feeding more data must not mutate the previously emitted frame.
	saved := make([]byte, len(got))
	copy(saved, got)
	f.Push(BuildOutbound(MidMTData2, bytes.Repeat([]byte{0x55}, 20)), func([]byte) {})
	if !bytes.Equal(got, saved) {
		t.Error("emitted frame aliases framer state")
	}
}

func TestFramer_Reset(t *testing.T) {
	f := NewFramer()
	f.Step(Preamble)
	f.Step(0xFF)
	f.Reset()

	frame := BuildOutbound(MidWakeup, nil)
	frames := collectFrames(f, frame)
	if len(frames) != 1 {
		t.Fatalf("got %d frames after Reset, want 1", len(frames))
	}
}
