// Package xbus implements the Xbus binary protocol spoken by Xsens MTi
// motion trackers over a serial link.
//
// # Wire format
//
// Every message travels in a frame:
//
//	[0]    preamble = 0xFA
//	[1]    bus id (0xFF = master device, used on outbound traffic)
//	[2]    message id
//	[3]    payload length, or 0xFF to escape to an extended length
//	[4-5]  extended length (big-endian uint16), only when byte 3 is 0xFF
//	...    payload
//	[last] checksum, chosen so that the sum of all bytes after the
//	       preamble is 0 modulo 256
//
// All multi-byte integers are big-endian.
//
// The MTData2 message (0x36) carries the sensor output as a sequence of
// self-describing records: a 16-bit data identifier, an 8-bit size, and
// size bytes of value. Records with an unknown identifier, or a known
// identifier with an unexpected size, are skipped without failing the
// parse; a truncated trailing record ends the walk and the fields
// collected so far are returned. This mirrors the device's
// forward-compatibility rules.
//
// The package is split into pure, stateless codec functions (checksum,
// envelope, fixed point, MTData2) that are safe for concurrent use on
// independent buffers, and the stateful Framer that resynchronizes frame
// boundaries out of a raw byte stream. Use one Framer per stream.
package xbus
