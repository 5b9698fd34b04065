package xbus

// DefaultMaxFrameSize is the sanity ceiling on a computed frame length.
// Frames the device actually emits stay well under it; anything larger is
// assumed to be a desynchronized length field.
const DefaultMaxFrameSize = 1000

type framerState int

const (
	seekingPreamble framerState = iota
	accumulatingFrame
)

// Framer resynchronizes frame boundaries out of an unbounded byte stream
// that may start mid-frame or contain corruption. It owns its accumulation
// buffer; completed frames are handed out as copies so downstream holds no
// reference into framer state.
//
// A Framer is single-stream state: use one instance per stream, with no
// sharing between goroutines.
type Framer struct {
	state    framerState
	buf      []byte
	expected int // total frame size once known, 0 = unknown
	maxFrame int
	resyncs  uint64
}

// FramerOption configures a Framer.
type FramerOption func(*Framer)

// WithMaxFrameSize overrides the sanity ceiling on computed frame lengths.
func WithMaxFrameSize(n int) FramerOption {
	return func(f *Framer) {
		if n >= MinFrameSize {
			f.maxFrame = n
		}
	}
}

// NewFramer returns a framer in the preamble-seeking state.
func NewFramer(opts ...FramerOption) *Framer {
	f := &Framer{
		buf:      make([]byte, 0, 256),
		maxFrame: DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Step feeds one byte through the state machine. When the byte completes a
// frame, the frame is returned (a copy, checksum still unverified) and the
// framer resets to seeking the next preamble. Exactly one state evaluation
// happens per byte; Step never blocks.
func (f *Framer) Step(b byte) ([]byte, bool) {
	switch f.state {
	case seekingPreamble:
		if b == Preamble {
			f.buf = append(f.buf[:0], b)
			f.expected = 0
			f.state = accumulatingFrame
		}
		return nil, false

	case accumulatingFrame:
		f.buf = append(f.buf, b)

		if f.expected == 0 {
			if total, ok := frameLength(f.buf); ok {
				if total < MinFrameSize || total > f.maxFrame {
					f.abort()
					return nil, false
				}
				f.expected = total
			}
		}

		if f.expected > 0 && len(f.buf) >= f.expected {
			frame := make([]byte, f.expected)
			copy(frame, f.buf)
			f.Reset()
			return frame, true
		}

		// Desync safety valve: an extended length that never resolves
		// cannot grow past the ceiling.
		if len(f.buf) > f.maxFrame {
			f.abort()
		}
		return nil, false
	}
	return nil, false
}

// Push feeds a chunk of bytes through Step, invoking emit for every
// completed frame.
func (f *Framer) Push(data []byte, emit func(frame []byte)) {
	for _, b := range data {
		if frame, ok := f.Step(b); ok {
			emit(frame)
		}
	}
}

// Resyncs returns how many times the framer abandoned an assumed frame
// start and went back to seeking a preamble, frame completions excluded.
func (f *Framer) Resyncs() uint64 {
	return f.resyncs
}

// Reset returns the framer to its initial state, discarding any partial
// frame.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.expected = 0
	f.state = seekingPreamble
}

func (f *Framer) abort() {
	f.resyncs++
	f.Reset()
}
