// ABOUTME: Single-source mixer for the audio drivers
// ABOUTME: Pulls from a Source with volume, mute and pause applied
package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
)

// Player implements driver.Mixer for one source. Mix runs on the driver
// playback goroutine; the setters are safe to call from any goroutine.
type Player struct {
	source   Source
	channels int
	logger   *slog.Logger

	volume atomic.Int32
	muted  atomic.Bool
	paused atomic.Bool

	// only touched from Mix
	ended bool

	done     chan struct{}
	doneOnce sync.Once
	errMu    sync.Mutex
	err      error

	framesPlayed atomic.Int64
	underruns    atomic.Int64
}

// PlayerStats contains playback counters for a Player
type PlayerStats struct {
	FramesPlayed int64
	Underruns    int64
}

// NewPlayer creates a player for src. src must already produce the
// driver's channel count (see Prepare).
func NewPlayer(src Source, channels int, logger *slog.Logger) (*Player, error) {
	if src.Channels() != channels {
		return nil, fmt.Errorf("source has %d channels, mixer needs %d", src.Channels(), channels)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Player{
		source:   src,
		channels: channels,
		logger:   logger,
		done:     make(chan struct{}),
	}
	p.volume.Store(100)
	return p, nil
}

// Mix fills out with the next frames from the source. Paused or finished
// players produce silence.
func (p *Player) Mix(frames int, out []int32) {
	out = out[:frames*p.channels]

	filled := 0
	if !p.ended && !p.paused.Load() {
		filled = p.fill(out)
		p.framesPlayed.Add(int64(filled / p.channels))
	}

	for i := filled; i < len(out); i++ {
		out[i] = 0
	}

	if filled > 0 {
		applyVolume(out[:filled], int(p.volume.Load()), p.muted.Load())
	}
}

func (p *Player) fill(out []int32) int {
	filled := 0
	for filled < len(out) {
		n, err := p.source.Read(out[filled:])
		filled += n

		if errors.Is(err, io.EOF) {
			p.finish(nil)
			break
		}
		if err != nil {
			p.logger.Error("audio source read failed", "error", err)
			p.finish(err)
			break
		}
		if n == 0 {
			p.underruns.Add(1)
			break
		}
	}
	return filled
}

func (p *Player) finish(err error) {
	p.ended = true
	p.errMu.Lock()
	p.err = err
	p.errMu.Unlock()
	p.doneOnce.Do(func() { close(p.done) })
}

// Done is closed once the source is exhausted or fails
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Err returns the read error that ended playback, if any
func (p *Player) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// SetVolume sets the volume (0-100)
func (p *Player) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.volume.Store(int32(volume))
}

// Volume returns current volume
func (p *Player) Volume() int {
	return int(p.volume.Load())
}

// SetMuted sets mute state
func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Muted returns mute state
func (p *Player) Muted() bool {
	return p.muted.Load()
}

// SetPaused sets pause state
func (p *Player) SetPaused(paused bool) {
	p.paused.Store(paused)
}

// Paused returns pause state
func (p *Player) Paused() bool {
	return p.paused.Load()
}

// Metadata returns the source's title, artist, album
func (p *Player) Metadata() (string, string, string) {
	return p.source.Metadata()
}

// Stats returns playback counters
func (p *Player) Stats() PlayerStats {
	return PlayerStats{
		FramesPlayed: p.framesPlayed.Load(),
		Underruns:    p.underruns.Load(),
	}
}

// Close closes the source. Call it after the driver has finished.
func (p *Player) Close() error {
	return p.source.Close()
}

// applyVolume applies volume and mute in place with clipping protection
func applyVolume(samples []int32, volume int, muted bool) {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		return
	}

	for i, sample := range samples {
		samples[i] = audio.ClampSample(int64(float64(sample) * multiplier))
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
