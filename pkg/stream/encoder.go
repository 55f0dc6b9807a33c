package stream

import (
	"fmt"
	"strconv"
)

// Mode selects the wire framing for one sample. Modes are chosen at
// configuration time and never mixed at runtime.
type Mode uint8

const (
	// ModeText frames a sample as its decimal ASCII digits followed by a
	// newline. Human-readable, variable length, highest overhead.
	ModeText Mode = iota
	// ModeTextTimestamp frames a sample as "millis,value\n" where millis is
	// the device's monotonic millisecond clock. Lets a receiver reconstruct
	// timing offline.
	ModeTextTimestamp
	// ModeBinary frames a sample as exactly two bytes, low byte first,
	// masked to 16 bits. No terminator, no checksum: the receiver frames
	// purely by byte count. Required at high sampling frequencies.
	ModeBinary
)

// BinaryFrameSize is the fixed length of a ModeBinary frame.
const BinaryFrameSize = 2

// maxFrameSize bounds the encoded size of any frame:
// "4294967295,65535\n" is the longest timestamped text frame.
const maxFrameSize = 17

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeTextTimestamp:
		return "text-timestamp"
	case ModeBinary:
		return "binary"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode parses a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "text":
		return ModeText, nil
	case "text-timestamp":
		return ModeTextTimestamp, nil
	case "binary":
		return ModeBinary, nil
	default:
		return 0, fmt.Errorf("unknown encoding mode %q", s)
	}
}

// FrameSize returns the fixed frame length of the mode, or 0 for
// variable-length (line-terminated) modes.
func (m Mode) FrameSize() int {
	if m == ModeBinary {
		return BinaryFrameSize
	}
	return 0
}

// AppendFrame appends one encoded frame for the sample value to dst and
// returns the extended slice. millis is the device millisecond clock and is
// only used by ModeTextTimestamp. The encoding is a pure function of its
// inputs: identical inputs always produce identical bytes.
func (m Mode) AppendFrame(dst []byte, millis uint32, value uint16) []byte {
	switch m {
	case ModeTextTimestamp:
		dst = strconv.AppendUint(dst, uint64(millis), 10)
		dst = append(dst, ',')
		dst = strconv.AppendUint(dst, uint64(value), 10)
		return append(dst, '\n')
	case ModeBinary:
		return append(dst, byte(value), byte(value>>8))
	default:
		dst = strconv.AppendUint(dst, uint64(value), 10)
		return append(dst, '\n')
	}
}

// DecodeBinary reconstructs a sample value from a 2-byte little-endian
// frame produced by ModeBinary.
func DecodeBinary(frame []byte) (uint16, error) {
	if len(frame) != BinaryFrameSize {
		return 0, fmt.Errorf("binary frame must be %d bytes, got %d", BinaryFrameSize, len(frame))
	}
	return uint16(frame[0]) | uint16(frame[1])<<8, nil
}
