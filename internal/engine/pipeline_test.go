package engine

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/xbusd/internal/xbus"
)

func pipelineFixture(t *testing.T) (*Pipeline, chan Event, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	sub := hub.Subscribe()
	return NewPipeline(hub, 0), sub, cancel
}

func waitEvent(t *testing.T, sub chan Event) Event {
	t.Helper()
	select {
	case ev := <-sub:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return Event{}
	}
}

func TestPipeline_TelemetryFrame(t *testing.T) {
	p, sub, cancel := pipelineFixture(t)
	defer cancel()

	frame := xbus.BuildOutbound(xbus.MidMTData2,
		[]byte{0x10, 0x20, 0x02, 0x0B, 0x0A})
	p.Feed(frame)

	ev := waitEvent(t, sub)
	if ev.ID != xbus.MidMTData2 {
		t.Fatalf("event id = %s, want MTData2", ev.ID)
	}
	if ev.Sample == nil || ev.Sample.PacketCounter == nil || *ev.Sample.PacketCounter != 2826 {
		t.Errorf("sample not decoded: %+v", ev.Sample)
	}
	if ev.Payload != nil {
		t.Error("telemetry event should not carry an opaque payload")
	}
}

func TestPipeline_OpaqueFrame(t *testing.T) {
	p, sub, cancel := pipelineFixture(t)
	defer cancel()

	p.Feed(xbus.BuildOutbound(xbus.MidDeviceID, []byte{0x12, 0x34, 0x56, 0x78}))

	ev := waitEvent(t, sub)
	if ev.ID != xbus.MidDeviceID {
		t.Fatalf("event id = %s, want DeviceID", ev.ID)
	}
	if ev.Sample != nil {
		t.Error("non-telemetry event decoded as a sample")
	}
	if len(ev.Payload) != 4 {
		t.Errorf("payload = % X, want 4 bytes", ev.Payload)
	}
}

func TestPipeline_DropsBadChecksum(t *testing.T) {
	p, sub, cancel := pipelineFixture(t)
	defer cancel()

	frame := xbus.BuildOutbound(xbus.MidWakeupAck, nil)
	frame[len(frame)-1] ^= 0xFF
	p.Feed(frame)

	// A good frame after the bad one must still come through.
	good := xbus.BuildOutbound(xbus.MidWakeupAck, nil)
	p.Feed(good)

	ev := waitEvent(t, sub)
	if ev.ID != xbus.MidWakeupAck {
		t.Fatalf("event id = %s", ev.ID)
	}

	frames, checksumDrops, _, _ := p.Stats()
	if frames != 1 {
		t.Errorf("frames = %d, want 1", frames)
	}
	if checksumDrops != 1 {
		t.Errorf("checksumDrops = %d, want 1", checksumDrops)
	}
}

func TestPipeline_RecoversFromJunk(t *testing.T) {
	p, sub, cancel := pipelineFixture(t)
	defer cancel()

	frame := xbus.BuildOutbound(xbus.MidGotoConfigAck, nil)
	var stream []byte
	stream = append(stream, 0xDE, 0xAD, 0xBE, 0xEF)
	stream = append(stream, frame...)

	// Split across chunk boundaries like a real TCP read would.
	p.Feed(stream[:3])
	p.Feed(stream[3:6])
	p.Feed(stream[6:])

	ev := waitEvent(t, sub)
	if ev.ID != xbus.MidGotoConfigAck {
		t.Errorf("event id = %s, want GotoConfigAck", ev.ID)
	}
}

func TestPipeline_RunConsumesChannel(t *testing.T) {
	p, sub, cancel := pipelineFixture(t)
	defer cancel()

	chunks := make(chan []byte, 4)
	chunks <- xbus.BuildOutbound(xbus.MidWakeup, nil)
	close(chunks)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background(), chunks)
		close(done)
	}()

	ev := waitEvent(t, sub)
	if ev.ID != xbus.MidWakeup {
		t.Errorf("event id = %s, want Wakeup", ev.ID)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after channel close")
	}
}
