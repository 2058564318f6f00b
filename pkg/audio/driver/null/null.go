// ABOUTME: Null audio driver
// ABOUTME: Runs the mixer in real time and discards the output
package null

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
)

// Name is the registration name of the null driver
const Name = "null"

// Driver mixes without an output device. It is always available and
// serves as the last fallback.
type Driver struct {
	mu          sync.Mutex
	mixMu       sync.Mutex // held while mixing; outlives each pump
	pump        atomic.Pointer[driver.Pump]
	mixRate     int
	speakerMode audio.SpeakerMode
	logger      *slog.Logger
}

// New creates a null driver
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string { return Name }

// Init spawns the playback goroutine
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

	d.logger = cfg.Logger.With("driver", Name)
	d.mixRate = cfg.MixRate
	d.speakerMode = cfg.SpeakerMode()

	pump := driver.NewPump(driver.PumpConfig{
		Mixer:        cfg.Mixer,
		Sink:         driver.SinkFunc(func([]int32) error { return nil }),
		BufferFrames: cfg.BufferFrames(),
		Channels:     cfg.Channels,
		MixRate:      cfg.MixRate,
		Freewheel:    cfg.Freewheel,
		Lock:         &d.mixMu,
		Logger:       d.logger,
	})
	pump.Run()
	d.pump.Store(pump)

	d.logger.Info("null audio output initialized", "mix_rate", cfg.MixRate, "buffer_frames", cfg.BufferFrames())
	return nil
}

func (d *Driver) Start() {
	if p := d.pump.Load(); p != nil {
		p.SetActive(true)
	}
}

func (d *Driver) MixRate() int                   { return d.mixRate }
func (d *Driver) SpeakerMode() audio.SpeakerMode { return d.speakerMode }

func (d *Driver) Lock() {
	d.mixMu.Lock()
}

func (d *Driver) Unlock() {
	d.mixMu.Unlock()
}

// Finish stops the playback goroutine
func (d *Driver) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p := d.pump.Load(); p != nil {
		p.Stop()
		d.pump.Store(nil)
	}
}

func (d *Driver) Stats() driver.Stats {
	if p := d.pump.Load(); p != nil {
		return p.Stats()
	}
	return driver.Stats{}
}
