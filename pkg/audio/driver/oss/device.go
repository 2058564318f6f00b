// ABOUTME: OSS DSP device abstraction
// ABOUTME: The ioctl-level operations the driver needs from /dev/dsp
package oss

import (
	"encoding/binary"
	"io"
	"math/bits"
)

// Sample formats from sys/soundcard.h
const (
	FormatU8    = 0x00000008
	FormatS16LE = 0x00000010
	FormatS16BE = 0x00000020
	FormatS8    = 0x00000040
	FormatS32LE = 0x00001000
	FormatS32BE = 0x00002000
	FormatS24LE = 0x00010000
)

// Device is an open OSS DSP device. Each setter issues the matching
// SNDCTL_DSP_* ioctl and returns the value the device settled on.
type Device interface {
	io.WriteCloser

	SetFormat(format int) (int, error)
	SetChannels(channels int) (int, error)
	SetSpeed(rate int) (int, error)

	// SetFragment requests fragment sizing, encoded as count<<16 | log2(bytes)
	SetFragment(fragment int) error

	// Reset drops queued samples
	Reset() error
}

// Opener opens a DSP device for writing
type Opener func(path string) (Device, error)

// FormatS16NE returns the native-endian signed 16-bit format
func FormatS16NE() int {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return FormatS16LE
	}
	return FormatS16BE
}

// FormatName returns a readable name for a format constant
func FormatName(format int) string {
	switch format {
	case FormatU8:
		return "U8"
	case FormatS8:
		return "S8"
	case FormatS16LE:
		return "S16_LE"
	case FormatS16BE:
		return "S16_BE"
	case FormatS24LE:
		return "S24_LE"
	case FormatS32LE:
		return "S32_LE"
	case FormatS32BE:
		return "S32_BE"
	default:
		return "unknown"
	}
}

// fragmentRequest encodes count fragments of at least periodBytes each
func fragmentRequest(count, periodBytes int) int {
	if periodBytes < 16 {
		periodBytes = 16
	}
	shift := bits.Len(uint(periodBytes - 1))
	return count<<16 | shift
}
