// ABOUTME: OSS audio driver
// ABOUTME: Configures /dev/dsp with ioctls and feeds it from a playback goroutine
package oss

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
)

// Name is the registration name of the OSS driver
const Name = "oss"

// fragments requested from the device, each one period long
const fragmentCount = 4

// Driver plays mixer output through an OSS DSP device
type Driver struct {
	open Opener

	mu          sync.Mutex // guards init/finish
	mixMu       sync.Mutex // held while mixing; outlives each pump
	pump        atomic.Pointer[driver.Pump]
	dev         Device
	logger      *slog.Logger
	out         []byte
	mixRate     int
	speakerMode audio.SpeakerMode

	shortWrites atomic.Int64
}

// New creates an OSS driver using the system DSP device
func New() *Driver {
	return NewWithOpener(OpenDSP)
}

// NewWithOpener creates an OSS driver that opens devices through open
func NewWithOpener(open Opener) *Driver {
	return &Driver{
		open:   open,
		logger: slog.Default(),
	}
}

// Name returns "oss"
func (d *Driver) Name() string {
	return Name
}

// Init opens and configures the device, then spawns the playback
// goroutine in the inactive state
func (d *Driver) Init(cfg driver.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pump.Load() != nil {
		return driver.ErrAlreadyInitialized
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger.With("driver", Name, "device", cfg.Device)
	channels := cfg.Channels
	frames := cfg.BufferFrames()

	dev, err := d.open(cfg.Device)
	if err != nil {
		logger.Error("OSS audio open failed", "error", err)
		return fmt.Errorf("%w: %w", driver.ErrCantOpen, err)
	}

	rate, err := configure(dev, cfg, frames, logger)
	if err != nil {
		logger.Error("OSS audio configuration failed", "error", err)
		if cerr := dev.Close(); cerr != nil {
			logger.Warn("OSS audio close failed", "error", cerr)
		}
		return err
	}

	d.dev = dev
	d.logger = logger
	d.out = make([]byte, frames*channels*2)
	d.mixRate = rate
	d.speakerMode = cfg.SpeakerMode()
	d.shortWrites.Store(0)

	pump := driver.NewPump(driver.PumpConfig{
		Mixer:        cfg.Mixer,
		Sink:         d,
		BufferFrames: frames,
		Channels:     channels,
		MixRate:      rate,
		SinkPaced:    true,
		Lock:         &d.mixMu,
		Logger:       logger,
	})
	pump.Run()
	d.pump.Store(pump)

	logger.Info("OSS audio output initialized",
		"mix_rate", rate,
		"channels", channels,
		"speaker_mode", d.speakerMode.String(),
		"buffer_frames", frames,
		"period", pump.Period())

	return nil
}

// configure applies format, channels and rate, returning the granted rate
func configure(dev Device, cfg driver.Config, frames int, logger *slog.Logger) (int, error) {
	// Fragment sizing has to come before the other settings to take effect
	fragment := fragmentRequest(fragmentCount, frames*cfg.Channels*2)
	if err := dev.SetFragment(fragment); err != nil {
		logger.Debug("OSS audio fragment request ignored", "fragment", fmt.Sprintf("%#x", fragment), "error", err)
	}

	want := FormatS16NE()
	got, err := dev.SetFormat(want)
	if err != nil {
		return 0, fmt.Errorf("%w: setting sample format: %w", driver.ErrInvalidParameter, err)
	}
	if got != want {
		return 0, fmt.Errorf("%w: %s is a bad sample format (device offered %s)",
			driver.ErrInvalidParameter, FormatName(want), FormatName(got))
	}

	channels, err := dev.SetChannels(cfg.Channels)
	if err != nil {
		return 0, fmt.Errorf("%w: unable to get %d channels: %w", driver.ErrInvalidParameter, cfg.Channels, err)
	}
	if channels != cfg.Channels {
		return 0, fmt.Errorf("%w: got %d channels instead of %d", driver.ErrInvalidParameter, channels, cfg.Channels)
	}

	rate, err := dev.SetSpeed(cfg.MixRate)
	if err != nil {
		return 0, fmt.Errorf("%w: unable to set the sample rate: %w", driver.ErrInvalidParameter, err)
	}
	if diff := rate - cfg.MixRate; diff > cfg.Tolerance() || -diff > cfg.Tolerance() {
		return 0, fmt.Errorf("%w: got sample rate of %d instead of %d",
			driver.ErrInvalidParameter, rate, cfg.MixRate)
	}

	return rate, nil
}

// WritePeriod converts one mixed period to S16 and writes it to the device
func (d *Driver) WritePeriod(samples []int32) error {
	out := d.out[:len(samples)*2]
	audio.PutInt16Samples(binary.NativeEndian, out, samples)

	for len(out) > 0 {
		n, err := d.dev.Write(out)
		if err != nil {
			return fmt.Errorf("dsp write: %w", err)
		}
		if n < len(out) {
			d.shortWrites.Add(1)
		}
		if n == 0 {
			return fmt.Errorf("dsp write: device accepted no data")
		}
		out = out[n:]
	}
	return nil
}

// Start begins calling the mixer
func (d *Driver) Start() {
	if p := d.pump.Load(); p != nil {
		p.SetActive(true)
	}
}

// MixRate returns the rate granted by the device, zero before Init
func (d *Driver) MixRate() int {
	return d.mixRate
}

// SpeakerMode returns the configured channel layout
func (d *Driver) SpeakerMode() audio.SpeakerMode {
	return d.speakerMode
}

// Lock blocks the playback goroutine between periods
func (d *Driver) Lock() {
	d.mixMu.Lock()
}

// Unlock releases the playback goroutine
func (d *Driver) Unlock() {
	d.mixMu.Unlock()
}

// Finish stops the playback goroutine and closes the device
func (d *Driver) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.pump.Load()
	if p == nil {
		return
	}

	p.Stop()
	d.pump.Store(nil)

	if err := d.dev.Reset(); err != nil {
		d.logger.Debug("OSS audio reset failed", "error", err)
	}
	if err := d.dev.Close(); err != nil {
		d.logger.Warn("OSS audio close failed", "error", err)
	}
	d.dev = nil
	d.out = nil

	d.logger.Info("OSS audio output closed")
}

// Stats returns playback counters
func (d *Driver) Stats() driver.Stats {
	p := d.pump.Load()
	if p == nil {
		return driver.Stats{}
	}
	stats := p.Stats()
	stats.ShortWrites = d.shortWrites.Load()
	return stats
}
