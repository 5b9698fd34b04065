// Package transport maintains the byte-stream connection to a serial
// bridge (ser2net or similar) carrying device traffic over TCP.
//
// The transport has no knowledge of frame boundaries; it delivers raw
// chunks in arrival order and leaves framing to the decoder.
package transport
