// ABOUTME: Structured logging setup for the CLI
// ABOUTME: Logs to a file under the TUI, to stdout and the file otherwise
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// setupLogger configures the default slog logger. With the TUI on, logs
// go only to the log file so they don't corrupt the screen.
func setupLogger(g *Globals, useTUI bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", g.LogLevel, err)
	}

	var w io.Writer = os.Stdout
	closeFn := func() {}

	if g.LogFile != "" {
		f, err := os.OpenFile(g.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening log file: %w", err)
		}
		closeFn = func() { _ = f.Close() }

		if useTUI {
			w = f
		} else {
			w = io.MultiWriter(os.Stdout, f)
		}
	} else if useTUI {
		w = io.Discard
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(g.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, closeFn, nil
}
