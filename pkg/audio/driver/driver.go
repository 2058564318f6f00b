// ABOUTME: Abstract audio driver interface
// ABOUTME: Common contract every playback backend implements for the mixer
package driver

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
)

var (
	// ErrCantOpen is returned when the output device cannot be opened
	ErrCantOpen = errors.New("can't open audio device")
	// ErrInvalidParameter is returned when the device rejects a requested setting
	ErrInvalidParameter = errors.New("invalid audio parameter")
	// ErrUnavailable is returned when a backend is not supported on this system
	ErrUnavailable = errors.New("audio driver unavailable")
	// ErrAlreadyInitialized is returned by Init on a running driver
	ErrAlreadyInitialized = errors.New("audio driver already initialized")
)

// Mixer fills interleaved output periods. It is called from the driver's
// playback goroutine with the driver lock held; out holds frames*channels
// samples and must be filled completely.
type Mixer interface {
	Mix(frames int, out []int32)
}

// MixerFunc adapts a function to the Mixer interface
type MixerFunc func(frames int, out []int32)

// Mix calls f(frames, out)
func (f MixerFunc) Mix(frames int, out []int32) {
	f(frames, out)
}

// Driver represents an audio output backend
type Driver interface {
	// Name returns the backend name used for registration and logs
	Name() string

	// Init configures the device and spawns the playback goroutine in the
	// inactive state. On error nothing is left running.
	Init(cfg Config) error

	// Start makes the playback goroutine begin calling the mixer
	Start()

	// MixRate returns the negotiated sample rate in frames per second
	MixRate() int

	// SpeakerMode returns the channel layout reported to the mixer
	SpeakerMode() audio.SpeakerMode

	// Lock blocks the playback goroutine between periods. The lock
	// belongs to the driver, not to one Init, so a Lock taken before
	// Finish pairs with an Unlock after the next Init. Without a running
	// goroutine it blocks nothing.
	Lock()

	// Unlock releases the lock taken by Lock
	Unlock()

	// Finish stops playback and releases the device. Safe to call more
	// than once and on a driver that never initialized.
	Finish()

	// Stats returns playback counters
	Stats() Stats
}

// Stats contains playback counters for a driver
type Stats struct {
	BufferFrames int
	FramesMixed  int64
	Periods      int64
	ShortWrites  int64
	WriteErrors  int64
	Active       bool
	Running      bool
}

// fillSilence zeroes a period when no mixer is attached
func fillSilence(out []int32) {
	for i := range out {
		out[i] = 0
	}
}
