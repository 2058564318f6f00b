// ABOUTME: Mixing helper for pull-based drivers
// ABOUTME: Lets device callbacks request any frame count under the driver lock
package driver

import (
	"sync"
	"sync/atomic"
)

// Callback serves pull-based backends (oto, malgo) whose device thread
// asks for an arbitrary number of frames. Requests are split into periods
// of at most BufferFrames so the mixer always sees its usual period size.
type Callback struct {
	mixer    Mixer
	frames   int
	channels int
	buf      []int32

	mu     *sync.Mutex
	active atomic.Bool

	framesMixed atomic.Int64
	periods     atomic.Int64
}

// NewCallback creates a pull-based mixing helper. lock is held while
// mixing; drivers pass their own so it survives re-initialization. Nil
// allocates one.
func NewCallback(mixer Mixer, lock *sync.Mutex, bufferFrames, channels int) *Callback {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Callback{
		mixer:    mixer,
		mu:       lock,
		frames:   bufferFrames,
		channels: channels,
		buf:      make([]int32, bufferFrames*channels),
	}
}

// Fill mixes frames frames into out, calling emit for each period so the
// caller can encode it. Inactive callbacks emit silence without calling
// the mixer.
func (c *Callback) Fill(frames int, emit func(offset int, samples []int32)) {
	for offset := 0; offset < frames; offset += c.frames {
		n := frames - offset
		if n > c.frames {
			n = c.frames
		}
		samples := c.buf[:n*c.channels]

		if c.active.Load() && c.mixer != nil {
			c.mu.Lock()
			c.mixer.Mix(n, samples)
			c.mu.Unlock()
			c.framesMixed.Add(int64(n))
			c.periods.Add(1)
		} else {
			fillSilence(samples)
		}

		emit(offset, samples)
	}
}

// SetActive toggles whether Fill calls the mixer
func (c *Callback) SetActive(active bool) {
	c.active.Store(active)
}

// Lock blocks Fill between periods
func (c *Callback) Lock() {
	c.mu.Lock()
}

// Unlock releases the lock taken by Lock
func (c *Callback) Unlock() {
	c.mu.Unlock()
}

// Stats returns mixing counters. Running is left to the driver.
func (c *Callback) Stats() Stats {
	return Stats{
		BufferFrames: c.frames,
		FramesMixed:  c.framesMixed.Load(),
		Periods:      c.periods.Load(),
		Active:       c.active.Load(),
	}
}
