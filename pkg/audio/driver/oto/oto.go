// ABOUTME: Oto-based audio driver
// ABOUTME: Pulls mixer periods into an oto player through an io.Reader
package oto

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
	"github.com/ebitengine/oto/v3"
)

// Name is the registration name of the oto driver
const Name = "oto"

// oto allows only one context per process, so it is shared across
// driver instances and kept alive after Finish
var shared struct {
	mu       sync.Mutex
	ctx      *oto.Context
	rate     int
	channels int
}

func sharedContext(rate, channels int, bufferSize time.Duration) (*oto.Context, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.ctx != nil {
		if shared.rate != rate || shared.channels != channels {
			return nil, fmt.Errorf("%w: oto context already running at %dHz %dch",
				driver.ErrUnavailable, shared.rate, shared.channels)
		}
		if err := shared.ctx.Resume(); err != nil {
			return nil, fmt.Errorf("%w: resuming oto context: %w", driver.ErrCantOpen, err)
		}
		return shared.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create oto context: %w", driver.ErrUnavailable, err)
	}
	<-ready

	shared.ctx = ctx
	shared.rate = rate
	shared.channels = channels
	return ctx, nil
}

// Driver plays mixer output through the platform audio API via oto
type Driver struct {
	mu          sync.Mutex
	mixMu       sync.Mutex // held while mixing; outlives each callback
	otoCtx      *oto.Context
	player      *oto.Player
	callback    *driver.Callback
	mixRate     int
	speakerMode audio.SpeakerMode
	logger      *slog.Logger
}

// New creates an oto driver
func New() *Driver {
	return &Driver{logger: slog.Default()}
}

// Name returns "oto"
func (d *Driver) Name() string {
	return Name
}

// Init creates the oto context and a paused-mixer player. The player
// streams silence until Start.
func (d *Driver) Init(cfg driver.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		return driver.ErrAlreadyInitialized
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger.With("driver", Name)
	frames := cfg.BufferFrames()
	period := time.Duration(frames) * time.Second / time.Duration(cfg.MixRate)

	ctx, err := sharedContext(cfg.MixRate, cfg.Channels, 2*period)
	if err != nil {
		logger.Error("oto audio init failed", "error", err)
		return err
	}

	d.callback = driver.NewCallback(cfg.Mixer, &d.mixMu, frames, cfg.Channels)
	d.otoCtx = ctx
	d.player = ctx.NewPlayer(newStream(d.callback, cfg.Channels))
	d.player.SetBufferSize(2 * frames * cfg.Channels * 2)
	d.player.Play()

	d.mixRate = cfg.MixRate
	d.speakerMode = cfg.SpeakerMode()
	d.logger = logger

	logger.Info("oto audio output initialized",
		"mix_rate", cfg.MixRate,
		"channels", cfg.Channels,
		"buffer_frames", frames)
	return nil
}

// Start begins calling the mixer
func (d *Driver) Start() {
	if c := d.current(); c != nil {
		c.SetActive(true)
	}
}

func (d *Driver) MixRate() int                   { return d.mixRate }
func (d *Driver) SpeakerMode() audio.SpeakerMode { return d.speakerMode }

// Lock blocks the oto reader between periods
func (d *Driver) Lock() {
	d.mixMu.Lock()
}

// Unlock releases the oto reader
func (d *Driver) Unlock() {
	d.mixMu.Unlock()
}

// Finish closes the player and suspends the shared context
func (d *Driver) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return
	}

	d.callback.SetActive(false)
	if err := d.player.Close(); err != nil {
		d.logger.Warn("oto player close failed", "error", err)
	}
	if err := d.otoCtx.Suspend(); err != nil {
		d.logger.Debug("oto context suspend failed", "error", err)
	}

	d.player = nil
	d.callback = nil
	d.otoCtx = nil
	d.logger.Info("oto audio output closed")
}

// Stats returns playback counters
func (d *Driver) Stats() driver.Stats {
	c := d.current()
	if c == nil {
		return driver.Stats{}
	}
	stats := c.Stats()
	stats.Running = true
	return stats
}

func (d *Driver) current() *driver.Callback {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.callback
}

// stream is the io.Reader oto pulls from. Each Read mixes as many whole
// frames as fit in p.
type stream struct {
	callback      *driver.Callback
	bytesPerFrame int
}

func newStream(callback *driver.Callback, channels int) *stream {
	return &stream{callback: callback, bytesPerFrame: channels * 2}
}

func (s *stream) Read(p []byte) (int, error) {
	frames := len(p) / s.bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	s.callback.Fill(frames, func(offset int, samples []int32) {
		audio.PutInt16Samples(binary.LittleEndian, p[offset*s.bytesPerFrame:], samples)
	})
	return frames * s.bytesPerFrame, nil
}
