// ABOUTME: WAV capture audio driver
// ABOUTME: Writes every mixed period to a 16-bit WAV file
package wavfile

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Name is the registration name of the WAV capture driver
const Name = "wav"

const (
	bitDepth     = 16
	wavFormatPCM = 1
)

// Driver records mixer output to Config.OutputPath
type Driver struct {
	mu          sync.Mutex
	mixMu       sync.Mutex // held while mixing; outlives each pump
	pump        atomic.Pointer[driver.Pump]
	file        *os.File
	encoder     *wav.Encoder
	buf         *goaudio.IntBuffer
	path        string
	mixRate     int
	speakerMode audio.SpeakerMode
	logger      *slog.Logger
}

// New creates a WAV capture driver
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string { return Name }

// Init creates the output file and spawns the playback goroutine
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
	if cfg.OutputPath == "" {
		return fmt.Errorf("%w: wav driver needs an output path", driver.ErrInvalidParameter)
	}

	logger := cfg.Logger.With("driver", Name, "path", cfg.OutputPath)

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrCantOpen, err)
	}

	frames := cfg.BufferFrames()
	d.file = f
	d.encoder = wav.NewEncoder(f, cfg.MixRate, bitDepth, cfg.Channels, wavFormatPCM)
	d.buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: cfg.Channels,
			SampleRate:  cfg.MixRate,
		},
		Data:           make([]int, frames*cfg.Channels),
		SourceBitDepth: bitDepth,
	}
	d.path = cfg.OutputPath
	d.mixRate = cfg.MixRate
	d.speakerMode = cfg.SpeakerMode()
	d.logger = logger

	pump := driver.NewPump(driver.PumpConfig{
		Mixer:        cfg.Mixer,
		Sink:         driver.SinkFunc(d.writePeriod),
		BufferFrames: frames,
		Channels:     cfg.Channels,
		MixRate:      cfg.MixRate,
		Freewheel:    cfg.Freewheel,
		Lock:         &d.mixMu,
		Logger:       logger,
	})
	pump.Run()
	d.pump.Store(pump)

	logger.Info("WAV audio output initialized", "mix_rate", cfg.MixRate, "channels", cfg.Channels)
	return nil
}

func (d *Driver) writePeriod(samples []int32) error {
	data := d.buf.Data[:len(samples)]
	for i, s := range samples {
		data[i] = int(audio.SampleToInt16(s))
	}
	d.buf.Data = data
	if err := d.encoder.Write(d.buf); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
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

// Finish stops recording and finalizes the WAV header
func (d *Driver) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.pump.Load()
	if p == nil {
		return
	}
	p.Stop()
	d.pump.Store(nil)

	if err := d.encoder.Close(); err != nil {
		d.logger.Warn("WAV finalize failed", "error", err)
	}
	if err := d.file.Close(); err != nil {
		d.logger.Warn("WAV close failed", "error", err)
	}
	d.encoder = nil
	d.file = nil
	d.buf = nil

	d.logger.Info("WAV audio output closed")
}

func (d *Driver) Stats() driver.Stats {
	if p := d.pump.Load(); p != nil {
		return p.Stats()
	}
	return driver.Stats{}
}
