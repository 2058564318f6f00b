// ABOUTME: Global CLI flags and driver configuration assembly
// ABOUTME: Layers command-line flags over OSS_* environment settings
package main

import (
	"fmt"
	"log/slog"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
)

// Globals are flags shared by every command
type Globals struct {
	Driver   string `help:"Preferred output driver (oss, oto, malgo, null, wav)" env:"OSS_DRIVER"`
	Device   string `help:"OSS DSP device path (default /dev/dsp)"`
	Rate     int    `help:"Requested mix rate in Hz (default 44100)"`
	Latency  int    `help:"Output latency in milliseconds (default 15)"`
	Channels int    `help:"Output channels: 2, 4, 6 or 8 (default 2)"`
	Output   string `help:"Write output to this WAV file instead of a device" type:"path"`

	Freewheel bool `help:"Let null and WAV output run faster than real time"`

	LogLevel  string `help:"Log level (debug, info, warn, error)" default:"info" env:"LOG_LEVEL" enum:"debug,info,warn,error"`
	LogFormat string `help:"Log format (text, json)" default:"text" env:"LOG_FORMAT" enum:"text,json"`
	LogFile   string `help:"Log file path" default:"ossplay.log" env:"LOG_FILE"`
}

// driverConfig loads OSS_* environment settings and applies any flags
func (g *Globals) driverConfig(logger *slog.Logger) (driver.Config, error) {
	cfg, err := driver.LoadConfig("OSS")
	if err != nil {
		return driver.Config{}, err
	}

	if g.Device != "" {
		cfg.Device = g.Device
	}
	if g.Rate != 0 {
		cfg.MixRate = g.Rate
	}
	if g.Latency != 0 {
		cfg.OutputLatencyMs = g.Latency
	}
	if g.Channels != 0 {
		cfg.Channels = g.Channels
	}
	if g.Output != "" {
		cfg.OutputPath = g.Output
	}
	if g.Freewheel {
		cfg.Freewheel = true
	}
	cfg.Logger = logger

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return driver.Config{}, fmt.Errorf("invalid output settings: %w", err)
	}
	return cfg, nil
}

// preferredDriver picks the driver to try first
func (g *Globals) preferredDriver() string {
	if g.Output != "" && g.Driver == "" {
		return wavDriverName
	}
	return g.Driver
}
