// ABOUTME: Malgo-based audio driver
// ABOUTME: Mixes directly inside the miniaudio data callback
package malgo

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
	"github.com/gen2brain/malgo"
)

// Name is the registration name of the malgo driver
const Name = "malgo"

// Driver plays mixer output through miniaudio
type Driver struct {
	mu          sync.Mutex
	mixMu       sync.Mutex // held while mixing; outlives each callback
	malgoCtx    *malgo.AllocatedContext
	device      *malgo.Device
	callback    *driver.Callback
	channels    int
	mixRate     int
	speakerMode audio.SpeakerMode
	logger      *slog.Logger
}

// New creates a malgo driver
func New() *Driver {
	return &Driver{logger: slog.Default()}
}

// Name returns "malgo"
func (d *Driver) Name() string {
	return Name
}

// Init opens the default playback device and starts it. The callback
// writes silence until Start.
func (d *Driver) Init(cfg driver.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		return driver.ErrAlreadyInitialized
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger.With("driver", Name)
	frames := cfg.BufferFrames()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		logger.Error("malgo context init failed", "error", err)
		return fmt.Errorf("%w: failed to initialize malgo context: %w", driver.ErrUnavailable, err)
	}

	callback := driver.NewCallback(cfg.Mixer, &d.mixMu, frames, cfg.Channels)
	channels := cfg.Channels

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(cfg.MixRate)
	deviceConfig.PeriodSizeInFrames = uint32(frames)
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			render(callback, channels, pOutput, int(frameCount))
		},
	})
	if err != nil {
		logger.Error("malgo device init failed", "error", err)
		freeContext(ctx, logger)
		return fmt.Errorf("%w: failed to initialize playback device: %w", driver.ErrCantOpen, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		freeContext(ctx, logger)
		return fmt.Errorf("%w: failed to start device: %w", driver.ErrCantOpen, err)
	}

	rate := int(device.SampleRate())
	if rate == 0 {
		rate = cfg.MixRate
	}

	d.malgoCtx = ctx
	d.device = device
	d.callback = callback
	d.channels = channels
	d.mixRate = rate
	d.speakerMode = cfg.SpeakerMode()
	d.logger = logger

	logger.Info("malgo audio output initialized",
		"mix_rate", rate,
		"channels", channels,
		"buffer_frames", frames)
	return nil
}

// render fills a miniaudio output buffer with S16 frames
func render(callback *driver.Callback, channels int, out []byte, frames int) {
	bytesPerFrame := channels * 2
	if limit := len(out) / bytesPerFrame; frames > limit {
		frames = limit
	}
	callback.Fill(frames, func(offset int, samples []int32) {
		audio.PutInt16Samples(binary.LittleEndian, out[offset*bytesPerFrame:], samples)
	})
}

// Start begins calling the mixer
func (d *Driver) Start() {
	if c := d.current(); c != nil {
		c.SetActive(true)
	}
}

func (d *Driver) MixRate() int                   { return d.mixRate }
func (d *Driver) SpeakerMode() audio.SpeakerMode { return d.speakerMode }

// Lock blocks the data callback between periods
func (d *Driver) Lock() {
	d.mixMu.Lock()
}

// Unlock releases the data callback
func (d *Driver) Unlock() {
	d.mixMu.Unlock()
}

// Finish stops the device and frees the miniaudio context
func (d *Driver) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return
	}

	if err := d.device.Stop(); err != nil {
		d.logger.Warn("malgo device stop failed", "error", err)
	}
	d.device.Uninit()
	freeContext(d.malgoCtx, d.logger)

	d.device = nil
	d.malgoCtx = nil
	d.callback = nil
	d.logger.Info("malgo audio output closed")
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

func freeContext(ctx *malgo.AllocatedContext, logger *slog.Logger) {
	if err := ctx.Uninit(); err != nil {
		logger.Warn("malgo context uninit failed", "error", err)
	}
	ctx.Free()
}
