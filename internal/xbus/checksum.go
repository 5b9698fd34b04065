package xbus

// Checksum returns the checksum byte for a frame whose last byte is the
// checksum slot: the value that makes the sum of all bytes after the
// preamble equal 0 modulo 256. The preamble itself is excluded. Frames
// shorter than the preamble plus the checksum slot yield 0.
func Checksum(frame []byte) byte {
	if len(frame) < 2 {
		return 0
	}
	var sum byte
	for _, b := range frame[1 : len(frame)-1] {
		sum -= b
	}
	return sum
}

// InsertChecksum computes the checksum over frame and writes it into the
// last byte. Frames too short to hold a checksum are left untouched.
func InsertChecksum(frame []byte) {
	if len(frame) < 2 {
		return
	}
	frame[len(frame)-1] = Checksum(frame)
}

// VerifyChecksum reports whether the frame checksum is valid: the sum of
// all bytes after the preamble, including the checksum byte, must be
// 0 modulo 256. Frames too short to carry a checksum never verify.
func VerifyChecksum(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	var sum byte
	for _, b := range frame[1:] {
		sum += b
	}
	return sum == 0
}
