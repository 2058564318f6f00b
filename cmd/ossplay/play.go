// ABOUTME: Play and tone commands
// ABOUTME: Wires a source through the player into the selected output driver
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-oss/internal/ui"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/driver"
	"github.com/Resonate-Protocol/resonate-oss/pkg/audio/source"
)

// PlaybackFlags are shared by the commands that produce sound
type PlaybackFlags struct {
	Volume   int           `help:"Initial volume (0-100)" default:"100" env:"OSS_VOLUME"`
	NoTUI    bool          `name:"no-tui" help:"Disable the terminal UI" env:"OSS_NO_TUI"`
	Duration time.Duration `help:"Stop after this long (0 plays to the end)"`
}

// PlayCmd plays an audio file
type PlayCmd struct {
	PlaybackFlags

	File string `arg:"" help:"Audio file to play (MP3, FLAC, WAV, Opus)" type:"existingfile"`
	Loop bool   `help:"Loop the file until stopped" env:"OSS_LOOP"`
}

// Run plays the file
func (c *PlayCmd) Run(g *Globals) error {
	return runSession(g, c.PlaybackFlags, func(int, int) (source.Source, error) {
		return source.Open(c.File, c.Loop)
	})
}

// ToneCmd plays a sine test tone
type ToneCmd struct {
	PlaybackFlags

	Frequency float64 `help:"Tone frequency in Hz" default:"440"`
}

// Run plays the tone
func (c *ToneCmd) Run(g *Globals) error {
	return runSession(g, c.PlaybackFlags, toneOpener(c.Frequency))
}

// toneOpener generates the tone at the driver's rate and channel count
func toneOpener(frequency float64) sourceOpener {
	return func(mixRate, channels int) (source.Source, error) {
		return source.NewToneSource(frequency, mixRate, channels), nil
	}
}

// session holds the running pieces of one playback
type session struct {
	id      string
	drv     driver.Driver
	player  *source.Player
	device  string
	logger  *slog.Logger
	tuiProg *tea.Program
}

// sourceOpener opens a source once the driver's rate and channels are known
type sourceOpener func(mixRate, channels int) (source.Source, error)

// runSession opens the output, builds the player at the granted rate and
// plays until the source ends, the duration elapses or the user quits
func runSession(g *Globals, flags PlaybackFlags, open sourceOpener) error {
	useTUI := !flags.NoTUI
	logger, closeLog, err := setupLogger(g, useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	sessionID := uuid.NewString()
	logger = logger.With("session", sessionID)

	cfg, err := g.driverConfig(logger)
	if err != nil {
		return err
	}

	// The player needs the granted rate, which is only known after Init.
	// The driver stays inactive until Start, so the slot is filled in time.
	var slot atomic.Pointer[source.Player]
	cfg.Mixer = driver.MixerFunc(func(frames int, out []int32) {
		if p := slot.Load(); p != nil {
			p.Mix(frames, out)
			return
		}
		clear(out)
	})

	m := newManager(logger, cfg.OutputPath != "")
	drv, err := m.Init(g.preferredDriver(), cfg)
	if err != nil {
		return fmt.Errorf("no audio output available: %w", err)
	}
	defer drv.Finish()

	channels := drv.SpeakerMode().Channels()
	src, err := open(drv.MixRate(), channels)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	player, err := source.NewPlayer(source.Prepare(src, drv.MixRate(), channels), channels, logger)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer func() {
		// stop the playback goroutine before closing the source it reads
		drv.Finish()
		_ = player.Close()
	}()
	player.SetVolume(flags.Volume)
	slot.Store(player)

	title, artist, _ := player.Metadata()
	logger.Info("starting playback",
		"driver", drv.Name(),
		"rate", drv.MixRate(),
		"speaker_mode", drv.SpeakerMode().String(),
		"source_rate", src.SampleRate(),
		"source_channels", src.Channels(),
		"title", title,
		"artist", artist)

	s := &session{
		id:     sessionID,
		drv:    drv,
		player: player,
		device: outputTarget(drv.Name(), cfg),
		logger: logger,
	}

	var volumeCtrl *ui.VolumeControl
	if useTUI {
		volumeCtrl = ui.NewVolumeControl()
		s.tuiProg = ui.Run(volumeCtrl, player.Volume())
		go func() {
			if _, err := s.tuiProg.Run(); err != nil {
				logger.Error("TUI error", "error", err)
			}
		}()
		go s.handleVolumeControl(volumeCtrl)
	} else {
		fmt.Printf("Playing %q via %s at %d Hz (%s). Press Ctrl+C to stop.\n",
			title, drv.Name(), drv.MixRate(), drv.SpeakerMode())
	}

	drv.Start()
	s.updateTUI(s.status("playing"))

	stopStats := make(chan struct{})
	defer close(stopStats)
	go s.statsUpdateLoop(stopStats)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var timeout <-chan time.Time
	if flags.Duration > 0 {
		timer := time.NewTimer(flags.Duration)
		defer timer.Stop()
		timeout = timer.C
	}

	var quit <-chan ui.QuitMsg
	if volumeCtrl != nil {
		quit = volumeCtrl.Quit
	}

	select {
	case <-player.Done():
		if err := player.Err(); err != nil {
			logger.Error("playback failed", "error", err)
			s.shutdownTUI()
			return err
		}
		logger.Info("playback finished")
	case <-timeout:
		logger.Info("duration reached", "duration", flags.Duration)
	case <-quit:
		logger.Info("quit requested from TUI")
	case sig := <-sigChan:
		logger.Info("received signal", "signal", sig)
	}

	s.shutdownTUI()
	logger.Info("stopping playback", "stats", drv.Stats(), "player", player.Stats())
	return nil
}

// handleVolumeControl applies TUI changes to the player. Changes are made
// under the driver lock so they land between periods.
func (s *session) handleVolumeControl(ctrl *ui.VolumeControl) {
	for change := range ctrl.Changes {
		s.drv.Lock()
		s.player.SetVolume(change.Volume)
		s.player.SetMuted(change.Muted)
		s.player.SetPaused(change.Paused)
		s.drv.Unlock()

		s.logger.Debug("player control changed",
			"volume", change.Volume, "muted", change.Muted, "paused", change.Paused)

		state := "playing"
		if change.Paused {
			state = "paused"
		}
		s.updateTUI(ui.StatusMsg{Volume: change.Volume, State: state})
	}
}

// statsUpdateLoop pushes driver, player and runtime stats to the TUI
func (s *session) statsUpdateLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	runtimeTicker := time.NewTicker(2 * time.Second)
	defer runtimeTicker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			state := "playing"
			if s.player.Paused() {
				state = "paused"
			}
			s.updateTUI(s.status(state))
		case <-runtimeTicker.C:
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			s.updateTUI(ui.StatusMsg{
				Goroutines: runtime.NumGoroutine(),
				MemAlloc:   mem.Alloc,
				MemSys:     mem.Sys,
			})
		}
	}
}

// status builds a full TUI snapshot
func (s *session) status(state string) ui.StatusMsg {
	ds := s.drv.Stats()
	ps := s.player.Stats()
	title, artist, album := s.player.Metadata()

	var elapsed time.Duration
	if rate := s.drv.MixRate(); rate > 0 {
		elapsed = time.Duration(ps.FramesPlayed) * time.Second / time.Duration(rate)
	}

	return ui.StatusMsg{
		Driver:       s.drv.Name(),
		Device:       s.device,
		MixRate:      s.drv.MixRate(),
		SpeakerMode:  s.drv.SpeakerMode().String(),
		BufferFrames: ds.BufferFrames,
		SessionID:    s.id,
		Title:        title,
		Artist:       artist,
		Album:        album,
		State:        state,
		Volume:       s.player.Volume(),
		Elapsed:      elapsed,
		Stats: &ui.Stats{
			FramesMixed:  ds.FramesMixed,
			Periods:      ds.Periods,
			ShortWrites:  ds.ShortWrites,
			WriteErrors:  ds.WriteErrors,
			FramesPlayed: ps.FramesPlayed,
			Underruns:    ps.Underruns,
		},
	}
}

func (s *session) updateTUI(msg ui.StatusMsg) {
	if s.tuiProg != nil {
		s.tuiProg.Send(msg)
	}
}

func (s *session) shutdownTUI() {
	if s.tuiProg != nil {
		s.tuiProg.Quit()
		s.tuiProg.Wait()
	}
}
