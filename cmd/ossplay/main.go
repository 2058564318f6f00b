// ABOUTME: Entry point for the OSS audio player
// ABOUTME: Parses CLI commands and dispatches to playback, probing and listing
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/Resonate-Protocol/resonate-oss/internal/version"
)

// CLI defines the ossplay command structure
type CLI struct {
	Globals

	Play    PlayCmd    `cmd:"" default:"withargs" help:"Play an audio file (MP3, FLAC, WAV)"`
	Tone    ToneCmd    `cmd:"" help:"Play a sine test tone"`
	Drivers DriversCmd `cmd:"" help:"List audio drivers in fallback order"`
	Probe   ProbeCmd   `cmd:"" help:"Open the output, report negotiated parameters and close it"`

	Version kong.VersionFlag `help:"Print version and exit"`
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("ossplay"),
		kong.Description("Play audio through OSS (/dev/dsp) or a fallback output driver."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(&cli.Globals)
	if err != nil {
		slog.Error("command failed", "error", err)
	}
	ctx.FatalIfErrorf(err)
}
