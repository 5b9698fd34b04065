// Package mock emits a synthetic device byte stream for development
// without hardware. Frames are built with the real wire encoders, so
// everything downstream of the transport behaves exactly as it would
// against a live device.
package mock
