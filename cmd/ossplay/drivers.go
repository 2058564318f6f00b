// ABOUTME: Driver registration and the drivers/probe commands
// ABOUTME: Registers every output backend in fallback order
package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
	malgodriver "github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver/malgo"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver/null"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver/oss"
	otodriver "github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver/oto"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver/wavfile"
)

const wavDriverName = wavfile.Name

var driverDescriptions = map[string]string{
	oss.Name:         "Open Sound System DSP device",
	otodriver.Name:   "platform audio via oto",
	malgodriver.Name: "miniaudio via malgo",
	wavfile.Name:     "16-bit WAV file (--output)",
	null.Name:        "discard output, keep time",
}

// newManager registers the output drivers. The WAV driver is only
// registered when an output file is given; null is always last.
func newManager(logger *slog.Logger, withWAV bool) *driver.Manager {
	m := driver.NewManager(logger)

	register := func(name string, factory driver.Factory) {
		if err := m.Register(name, factory); err != nil {
			logger.Error("driver registration failed", "driver", name, "error", err)
		}
	}

	register(oss.Name, func() driver.Driver { return oss.New() })
	register(otodriver.Name, func() driver.Driver { return otodriver.New() })
	register(malgodriver.Name, func() driver.Driver { return malgodriver.New() })
	if withWAV {
		register(wavfile.Name, func() driver.Driver { return wavfile.New() })
	}
	register(null.Name, func() driver.Driver { return null.New() })

	return m
}

// outputTarget names where a driver sends audio, if it is a path
func outputTarget(name string, cfg driver.Config) string {
	switch name {
	case oss.Name:
		return cfg.Device
	case wavfile.Name:
		return cfg.OutputPath
	}
	return ""
}

// DriversCmd lists the registered drivers
type DriversCmd struct{}

// Run prints drivers in the order they are tried
func (c *DriversCmd) Run(g *Globals) error {
	logger, closeLog, err := setupLogger(g, false)
	if err != nil {
		return err
	}
	defer closeLog()

	m := newManager(logger, true)
	preferred := g.preferredDriver()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DRIVER\tDESCRIPTION\t")
	for _, name := range m.Names() {
		marker := ""
		if name == preferred {
			marker = "(preferred)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, driverDescriptions[name], marker)
	}
	return w.Flush()
}

// ProbeCmd opens the output with a silent mixer and reports what the
// device granted
type ProbeCmd struct{}

// Run initializes a driver, prints its parameters and finishes it
func (c *ProbeCmd) Run(g *Globals) error {
	logger, closeLog, err := setupLogger(g, false)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := g.driverConfig(logger)
	if err != nil {
		return err
	}
	cfg.Mixer = driver.MixerFunc(func(frames int, out []int32) {
		clear(out)
	})

	m := newManager(logger, cfg.OutputPath != "")
	d, err := m.Init(g.preferredDriver(), cfg)
	if err != nil {
		return fmt.Errorf("no audio output available: %w", err)
	}
	defer d.Finish()

	stats := d.Stats()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "driver:\t%s\n", d.Name())
	if target := outputTarget(d.Name(), cfg); target != "" {
		fmt.Fprintf(w, "target:\t%s\n", target)
	}
	if d.Name() == oss.Name {
		fmt.Fprintf(w, "format:\t%s\n", oss.FormatName(oss.FormatS16NE()))
	}
	fmt.Fprintf(w, "requested rate:\t%d Hz\n", cfg.MixRate)
	fmt.Fprintf(w, "mix rate:\t%d Hz\n", d.MixRate())
	fmt.Fprintf(w, "speaker mode:\t%s (%d channels)\n", d.SpeakerMode(), d.SpeakerMode().Channels())
	fmt.Fprintf(w, "buffer frames:\t%d (%.1f ms)\n", stats.BufferFrames,
		float64(stats.BufferFrames)*1000/float64(d.MixRate()))
	return w.Flush()
}
