// ABOUTME: Tests for driver configuration
// ABOUTME: Tests defaults, validation and environment loading
package driver

import (
	"testing"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio"
	"github.com/stretchr/testify/require"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()

	require.Equal(t, DefaultDevice, cfg.Device)
	require.Equal(t, DefaultMixRate, cfg.MixRate)
	require.Equal(t, DefaultOutputLatency, cfg.OutputLatencyMs)
	require.Equal(t, DefaultChannels, cfg.Channels)
	require.Equal(t, DefaultRateTolerance, cfg.RateTolerance)
	require.NotNil(t, cfg.Logger)
	require.Equal(t, audio.SpeakerModeStereo, cfg.SpeakerMode())
	require.Equal(t, 512, cfg.BufferFrames())
}

func TestConfigWithDefaultsKeepsValues(t *testing.T) {
	cfg := Config{Device: "/dev/dsp1", MixRate: 48000, Channels: 6}.WithDefaults()

	require.Equal(t, "/dev/dsp1", cfg.Device)
	require.Equal(t, 48000, cfg.MixRate)
	require.Equal(t, audio.SpeakerModeSurround51, cfg.SpeakerMode())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero mix rate", func(c *Config) { c.MixRate = -1 }},
		{"zero latency", func(c *Config) { c.OutputLatencyMs = -5 }},
		{"tolerance below exact", func(c *Config) { c.RateTolerance = -2 }},
		{"mix rate too high", func(c *Config) { c.MixRate = MaxMixRate + 1 }},
		{"latency too long", func(c *Config) { c.OutputLatencyMs = 60000 }},
		{"odd channels", func(c *Config) { c.Channels = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}.WithDefaults()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidParameter)
		})
	}

	require.NoError(t, Config{}.WithDefaults().Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("OSS_DEVICE", "/dev/dsp2")
	t.Setenv("OSS_MIX_RATE", "48000")
	t.Setenv("OSS_OUTPUT_LATENCY", "25")
	t.Setenv("OSS_CHANNELS", "4")

	cfg, err := LoadConfig("OSS")
	require.NoError(t, err)

	require.Equal(t, "/dev/dsp2", cfg.Device)
	require.Equal(t, 48000, cfg.MixRate)
	require.Equal(t, 25, cfg.OutputLatencyMs)
	require.Equal(t, 4, cfg.Channels)
	require.Equal(t, DefaultRateTolerance, cfg.RateTolerance)
	require.Equal(t, 1024, cfg.BufferFrames())
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("OSS_MIX_RATE", "fast")

	_, err := LoadConfig("OSS")
	require.Error(t, err)
}

func TestConfigExactRateMatch(t *testing.T) {
	cfg := Config{RateTolerance: ExactRateMatch}.WithDefaults()

	require.Equal(t, ExactRateMatch, cfg.RateTolerance)
	require.Zero(t, cfg.Tolerance())
	require.NoError(t, cfg.Validate())

	require.Equal(t, DefaultRateTolerance, Config{}.WithDefaults().Tolerance())
}

func TestLoadConfigExactRateMatch(t *testing.T) {
	t.Setenv("OSS_RATE_TOLERANCE", "-1")

	cfg, err := LoadConfig("OSS")
	require.NoError(t, err)
	require.Equal(t, ExactRateMatch, cfg.WithDefaults().RateTolerance)
}

func TestConfigUpperBounds(t *testing.T) {
	cfg := Config{MixRate: MaxMixRate, OutputLatencyMs: MaxOutputLatency, Channels: 8}.WithDefaults()
	require.NoError(t, cfg.Validate())

	cfg.OutputLatencyMs = MaxOutputLatency + 1
	require.ErrorIs(t, cfg.Validate(), ErrInvalidParameter)
}
