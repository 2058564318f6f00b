// ABOUTME: Driver configuration with defaults and environment loading
// ABOUTME: Mirrors the mix rate, latency and device settings a host provides
package driver

import (
	"fmt"
	"log/slog"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultDevice        = "/dev/dsp"
	DefaultMixRate       = 44100
	DefaultOutputLatency = 15 // milliseconds
	DefaultChannels      = 2
	DefaultRateTolerance = 500 // Hz

	// ExactRateMatch as RateTolerance rejects any rate other than the one requested
	ExactRateMatch = -1

	MaxMixRate       = 384000
	MaxOutputLatency = 1000 // milliseconds
)

// Config holds driver configuration
type Config struct {
	// Device is the OSS DSP device path
	Device string `envconfig:"DEVICE" default:"/dev/dsp"`

	// OutputPath is the destination file for the WAV capture driver
	OutputPath string `envconfig:"OUTPUT_PATH"`

	// MixRate is the requested sample rate
	MixRate int `envconfig:"MIX_RATE" default:"44100"`

	// OutputLatencyMs sizes one period: closest power of two to latency*rate
	OutputLatencyMs int `envconfig:"OUTPUT_LATENCY" default:"15"`

	// Channels selects the speaker mode (2, 4, 6 or 8)
	Channels int `envconfig:"CHANNELS" default:"2"`

	// RateTolerance is the allowed difference between requested and granted
	// rate. Zero means DefaultRateTolerance; use ExactRateMatch (-1) to
	// require the requested rate.
	RateTolerance int `envconfig:"RATE_TOLERANCE" default:"500"`

	// Freewheel lets drivers without a device clock (null, wavfile) run
	// as fast as the mixer allows instead of one period per period
	Freewheel bool `envconfig:"FREEWHEEL"`

	Mixer  Mixer        `ignored:"true"`
	Logger *slog.Logger `ignored:"true"`
}

// LoadConfig reads driver configuration from environment variables
// named <prefix>_DEVICE, <prefix>_MIX_RATE and so on
func LoadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process driver environment: %w", err)
	}
	return cfg, nil
}

// WithDefaults returns a copy with zero fields replaced by defaults
func (c Config) WithDefaults() Config {
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.MixRate == 0 {
		c.MixRate = DefaultMixRate
	}
	if c.OutputLatencyMs == 0 {
		c.OutputLatencyMs = DefaultOutputLatency
	}
	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}
	if c.RateTolerance == 0 {
		c.RateTolerance = DefaultRateTolerance
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.MixRate <= 0 || c.MixRate > MaxMixRate {
		return fmt.Errorf("%w: mix rate must be between 1 and %d, got %d", ErrInvalidParameter, MaxMixRate, c.MixRate)
	}
	if c.OutputLatencyMs <= 0 || c.OutputLatencyMs > MaxOutputLatency {
		return fmt.Errorf("%w: output latency must be between 1 and %dms, got %dms",
			ErrInvalidParameter, MaxOutputLatency, c.OutputLatencyMs)
	}
	if c.RateTolerance < ExactRateMatch {
		return fmt.Errorf("%w: rate tolerance must not be below %d, got %d", ErrInvalidParameter, ExactRateMatch, c.RateTolerance)
	}
	if _, err := audio.SpeakerModeForChannels(c.Channels); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return nil
}

// SpeakerMode returns the speaker mode for the configured channel count
func (c Config) SpeakerMode() audio.SpeakerMode {
	mode, _ := audio.SpeakerModeForChannels(c.Channels)
	return mode
}

// Tolerance returns the allowed rate difference in Hz
func (c Config) Tolerance() int {
	return max(c.RateTolerance, 0)
}

// BufferFrames returns the period size in frames
func (c Config) BufferFrames() int {
	return audio.BufferFrames(c.OutputLatencyMs, c.MixRate)
}
