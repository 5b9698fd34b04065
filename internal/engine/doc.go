// Package engine turns the raw byte stream from a device into decoded
// events and fans them out to subscribers.
//
// The pipeline recovers frame boundaries, drops frames that fail the
// checksum, and decodes telemetry into sensor samples; everything else
// passes through as an opaque message. The hub distributes events to any
// number of subscribers, dropping on slow ones rather than stalling the
// stream.
package engine
