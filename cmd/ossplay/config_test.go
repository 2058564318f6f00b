// ABOUTME: Tests for CLI configuration and logging helpers
// ABOUTME: Covers flag-over-environment layering and logger setup
package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
)

func TestDriverConfigDefaults(t *testing.T) {
	g := &Globals{}
	cfg, err := g.driverConfig(slog.Default())
	require.NoError(t, err)

	require.Equal(t, driver.DefaultDevice, cfg.Device)
	require.Equal(t, driver.DefaultMixRate, cfg.MixRate)
	require.Equal(t, driver.DefaultOutputLatency, cfg.OutputLatencyMs)
	require.Equal(t, driver.DefaultChannels, cfg.Channels)
	require.False(t, cfg.Freewheel)
}

func TestDriverConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("OSS_DEVICE", "/dev/dsp1")
	t.Setenv("OSS_MIX_RATE", "22050")
	t.Setenv("OSS_CHANNELS", "4")

	g := &Globals{Rate: 48000, Latency: 20, Freewheel: true}
	cfg, err := g.driverConfig(slog.Default())
	require.NoError(t, err)

	require.Equal(t, "/dev/dsp1", cfg.Device)
	require.Equal(t, 48000, cfg.MixRate)
	require.Equal(t, 20, cfg.OutputLatencyMs)
	require.Equal(t, 4, cfg.Channels)
	require.True(t, cfg.Freewheel)
}

func TestDriverConfigRejectsChannels(t *testing.T) {
	g := &Globals{Channels: 3}
	_, err := g.driverConfig(slog.Default())
	require.Error(t, err)
	require.True(t, errors.Is(err, driver.ErrInvalidParameter))
}

func TestPreferredDriver(t *testing.T) {
	tests := []struct {
		name     string
		globals  Globals
		expected string
	}{
		{"none", Globals{}, ""},
		{"explicit", Globals{Driver: "oto"}, "oto"},
		{"output implies wav", Globals{Output: "out.wav"}, wavDriverName},
		{"explicit wins over output", Globals{Driver: "null", Output: "out.wav"}, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.globals.preferredDriver())
		})
	}
}

func TestOutputTarget(t *testing.T) {
	cfg := driver.Config{Device: "/dev/dsp", OutputPath: "out.wav"}

	require.Equal(t, "/dev/dsp", outputTarget("oss", cfg))
	require.Equal(t, "out.wav", outputTarget("wav", cfg))
	require.Empty(t, outputTarget("null", cfg))
}

func TestNewManagerOrder(t *testing.T) {
	require.Equal(t, []string{"oss", "oto", "malgo", "null"}, newManager(slog.Default(), false).Names())
	require.Equal(t, []string{"oss", "oto", "malgo", "wav", "null"}, newManager(slog.Default(), true).Names())
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	logFile := filepath.Join(t.TempDir(), "ossplay.log")
	g := &Globals{LogLevel: "debug", LogFormat: "json", LogFile: logFile}

	logger, closeLog, err := setupLogger(g, true)
	require.NoError(t, err)
	logger.Debug("hello", "key", "value")
	closeLog()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
	require.Contains(t, string(data), `"key":"value"`)
}

func TestSetupLoggerInvalidLevel(t *testing.T) {
	g := &Globals{LogLevel: "loud"}
	_, _, err := setupLogger(g, false)
	require.Error(t, err)
}
