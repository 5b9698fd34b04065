package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/xbusd/internal/logging"
	"github.com/muurk/xbusd/internal/xbus"
)

// Pipeline decodes a raw chunk stream into events on a Hub.
type Pipeline struct {
	hub    *Hub
	framer *xbus.Framer

	frames        uint64
	checksumDrops uint64
	decodeDrops   uint64
}

// NewPipeline creates a pipeline publishing to hub. maxFrameSize bounds
// the frames the stream decoder will accept; zero uses the default.
func NewPipeline(hub *Hub, maxFrameSize int) *Pipeline {
	var opts []xbus.FramerOption
	if maxFrameSize > 0 {
		opts = append(opts, xbus.WithMaxFrameSize(maxFrameSize))
	}
	return &Pipeline{
		hub:    hub,
		framer: xbus.NewFramer(opts...),
	}
}

// Run consumes chunks until the channel closes or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, chunks <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			p.Feed(chunk)
		}
	}
}

// Feed pushes one chunk of stream bytes through the decoder, publishing
// an event for every complete, valid frame.
func (p *Pipeline) Feed(chunk []byte) {
	p.framer.Push(chunk, p.handleFrame)
}

func (p *Pipeline) handleFrame(frame []byte) {
	if !xbus.VerifyChecksum(frame) {
		p.checksumDrops++
		logging.LogRawBytes("Frame dropped, bad checksum", frame)
		return
	}

	env, err := xbus.DecodeEnvelope(frame)
	if err != nil {
		p.decodeDrops++
		logging.Warn("Frame dropped, undecodable", zap.Error(err))
		return
	}

	p.frames++
	logging.LogFrame("in", frame)

	event := Event{
		Received: time.Now(),
		ID:       env.ID,
	}

	if env.ID == xbus.MidMTData2 {
		sample, err := xbus.ParseMTData2(frame)
		if err != nil {
			p.decodeDrops++
			logging.Warn("Telemetry decode failed", zap.Error(err))
			return
		}
		event.Sample = sample
	} else {
		event.Payload = append([]byte(nil), env.Payload...)
	}

	p.hub.Publish(event)
}

// Stats reports pipeline counters: frames published, frames dropped on
// checksum, frames dropped on decode, and framer resyncs.
func (p *Pipeline) Stats() (frames, checksumDrops, decodeDrops, resyncs uint64) {
	return p.frames, p.checksumDrops, p.decodeDrops, p.framer.Resyncs()
}
